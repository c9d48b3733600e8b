package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

var everyPermission = []Permission{PermView, PermCreate, PermEdit, PermDelete, PermApprove, PermAdmin}

func TestGenerateToken_CarriesPermissions(t *testing.T) {
	tests := []struct {
		name  string
		perms Permission
		can   []Permission
		not   []Permission
	}{
		{
			name:  "auditor",
			perms: PermView,
			can:   []Permission{PermView},
			not:   []Permission{PermCreate, PermEdit, PermApprove},
		},
		{
			name:  "bookkeeper",
			perms: PermView | PermCreate | PermEdit,
			can:   []Permission{PermView, PermCreate, PermEdit},
			not:   []Permission{PermDelete, PermApprove},
		},
		{
			name:  "controller",
			perms: PermView | PermApprove,
			can:   []Permission{PermView, PermApprove},
			not:   []Permission{PermCreate, PermDelete},
		},
		{
			name:  "admin implies every bit",
			perms: PermAdmin,
			can:   everyPermission,
		},
		{
			name:  "no permissions",
			perms: 0,
			not:   everyPermission,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userID := uuid.New()
			token, err := GenerateToken(userID, "clerk@ledger.test", tc.perms, testSecret, time.Hour)
			require.NoError(t, err)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err, "a token validates regardless of its permissions")
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, "clerk@ledger.test", claims.Email)
			assert.Equal(t, tc.perms, claims.Permissions)

			for _, p := range tc.can {
				assert.True(t, claims.Permissions.Has(p), "expected %s", p)
			}
			for _, p := range tc.not {
				assert.False(t, claims.Permissions.Has(p), "unexpected %s", p)
			}
		})
	}
}

func TestGenerateToken_WireClaims(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "ops@ledger.test", PermView|PermApprove, testSecret, time.Hour)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims["user_id"])
	assert.Equal(t, userID.String(), claims["sub"])
	// JSON numbers decode as float64.
	assert.Equal(t, float64(PermView|PermApprove), claims["perms"])
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()
	email := "clerk@ledger.test"

	validToken, err := GenerateToken(userID, email, PermView, testSecret, 24*time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(userID, email, PermAll, testSecret, -1*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{
			name:      "expired admin token",
			token:     expiredToken,
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenExpired,
		},
		{
			name:      "wrong secret",
			token:     validToken,
			secret:    "wrong-secret",
			wantErrIs: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:      "malformed token",
			token:     "not.a.valid.jwt",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, tc.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidateToken_RejectsBadUserID(t *testing.T) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:      "ledgerctl",
		Permissions: PermAll,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user_id")
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:      uuid.NewString(),
		Permissions: PermAdmin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
}
