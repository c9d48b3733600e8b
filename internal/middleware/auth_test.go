package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
)

const testSecret = "test-jwt-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func bearer(t *testing.T, perms auth.Permission) string {
	t.Helper()
	token, err := auth.GenerateToken(uuid.New(), "clerk@test.com", perms, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", bearer(t, auth.PermView), http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			Auth(testSecret)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestAuth_PutsClaimsInContext(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateToken(userID, "clerk@test.com", auth.PermView|auth.PermCreate, testSecret, time.Hour)
	require.NoError(t, err)

	var gotUser uuid.UUID
	var gotPerms auth.Permission
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.UserIDFromContext(r.Context())
		gotPerms = auth.PermissionsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(testSecret)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, userID, gotUser)
	assert.Equal(t, auth.PermView|auth.PermCreate, gotPerms)
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name       string
		granted    auth.Permission
		required   auth.Permission
		wantStatus int
	}{
		{"granted", auth.PermView | auth.PermCreate, auth.PermCreate, http.StatusNoContent},
		{"missing", auth.PermView, auth.PermApprove, http.StatusForbidden},
		{"no permissions", 0, auth.PermView, http.StatusForbidden},
		{"admin grants all", auth.PermAdmin, auth.PermDelete, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journal-entries/1/post", nil)
			req.Header.Set("Authorization", bearer(t, tc.granted))
			rec := httptest.NewRecorder()

			Auth(testSecret)(Require(tc.required)(okHandler())).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"FORBIDDEN"`)
			}
		})
	}
}

func TestZeroPermissionToken(t *testing.T) {
	header := bearer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", header)
	rec := httptest.NewRecorder()
	Auth(testSecret)(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "authenticates")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", header)
	rec = httptest.NewRecorder()
	Auth(testSecret)(Require(auth.PermView)(okHandler())).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "but cannot even read")
}

func TestRequire_AdminGrantsEveryPermission(t *testing.T) {
	header := bearer(t, auth.PermAdmin)
	for _, perm := range []auth.Permission{auth.PermView, auth.PermCreate, auth.PermEdit, auth.PermDelete, auth.PermApprove, auth.PermAdmin} {
		t.Run(perm.String(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/accounts/9", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()

			Auth(testSecret)(Require(perm)(okHandler())).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
		})
	}
}
