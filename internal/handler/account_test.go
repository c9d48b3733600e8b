package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service"
)

type mockAccountService struct {
	accountService
	update *service.UpdateAccountParams
}

func (m *mockAccountService) UpdateAccount(_ context.Context, id int64, params service.UpdateAccountParams) (*domain.Account, error) {
	m.update = &params
	return &domain.Account{ID: id, Code: "1011", Name: "Petty Cash", Type: domain.AccountTypeAsset, IsActive: true}, nil
}

func TestAccountHandler_Update(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantName    *string
		wantParent  *int64
		clearParent bool
	}{
		{
			name:       "rename only leaves parent alone",
			body:       `{"name":"Float"}`,
			wantStatus: http.StatusOK,
			wantName:   strPtr("Float"),
		},
		{
			name:       "move under parent",
			body:       `{"parent_id":2}`,
			wantStatus: http.StatusOK,
			wantParent: int64Ptr(2),
		},
		{
			name:        "explicit null moves to root",
			body:        `{"parent_id":null}`,
			wantStatus:  http.StatusOK,
			clearParent: true,
		},
		{
			name:       "non-numeric parent",
			body:       `{"parent_id":"two"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAccountService{}
			h := NewAccountHandler(svc, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/accounts/3", strings.NewReader(tt.body))
			req.SetPathValue("id", "3")
			rec := httptest.NewRecorder()
			h.Update(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Nil(t, svc.update)
				return
			}
			require.NotNil(t, svc.update)
			assert.Equal(t, tt.wantName, svc.update.Name)
			assert.Nil(t, svc.update.Description)
			assert.Equal(t, tt.wantParent, svc.update.ParentID)
			assert.Equal(t, tt.clearParent, svc.update.ClearParent)
		})
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
