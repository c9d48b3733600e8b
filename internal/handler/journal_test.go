package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

type mockJournalService struct {
	draft    *ledger.DraftParams
	reversed *ledger.ReverseParams
	err      error
}

func (m *mockJournalService) entry(id int64, p ledger.DraftParams) *domain.JournalEntry {
	e := &domain.JournalEntry{ID: id, EntryDate: p.Date, Reference: p.Reference, Description: p.Description}
	for i, it := range p.Items {
		e.Items = append(e.Items, domain.JournalItem{
			LineNo: i + 1, AccountID: it.AccountID, DebitAmount: it.Debit, CreditAmount: it.Credit,
		})
	}
	return e
}

func (m *mockJournalService) CreateDraft(_ context.Context, p ledger.DraftParams) (*domain.JournalEntry, error) {
	m.draft = &p
	if m.err != nil {
		return nil, m.err
	}
	return m.entry(42, p), nil
}

func (m *mockJournalService) UpdateDraft(_ context.Context, id int64, p ledger.DraftParams) (*domain.JournalEntry, error) {
	m.draft = &p
	if m.err != nil {
		return nil, m.err
	}
	return m.entry(id, p), nil
}

func (m *mockJournalService) Post(_ context.Context, id int64, _ *uuid.UUID) (*domain.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.JournalEntry{ID: id, IsPosted: true}, nil
}

func (m *mockJournalService) Delete(_ context.Context, _ int64) error { return m.err }

func (m *mockJournalService) Reverse(_ context.Context, id int64, p ledger.ReverseParams) (*domain.JournalEntry, error) {
	m.reversed = &p
	if m.err != nil {
		return nil, m.err
	}
	return &domain.JournalEntry{ID: id + 1, IsPosted: true, ReversesEntryID: &id}, nil
}

func (m *mockJournalService) GetEntry(_ context.Context, id int64) (*domain.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.JournalEntry{ID: id}, nil
}

func (m *mockJournalService) ListEntries(_ context.Context, _ domain.EntryFilter) ([]domain.JournalEntry, error) {
	return nil, m.err
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, *APIError) {
	t.Helper()
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   *APIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data, resp.Error
}

func withCaller(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(auth.ContextWithClaims(r.Context(), &auth.Claims{UserID: id, Permissions: auth.PermAll}))
}

func TestJournalHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields []string
	}{
		{
			name:       "valid draft",
			body:       `{"date":"2024-01-15","reference":"INV-1","items":[{"account_id":1,"debit":"100.00"},{"account_id":2,"credit":"100.00"}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"date":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad date and no items",
			body:       `{"date":"15/01/2024"}`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"date", "items"},
		},
		{
			name:       "malformed amount is rejected",
			body:       `{"date":"2024-01-15","items":[{"account_id":1,"debit":"ten"},{"account_id":2,"credit":"-5"}]}`,
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"items[0].debit", "items[1].credit"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockJournalService{}
			h := NewJournalHandler(svc)
			user := uuid.New()
			req := withCaller(httptest.NewRequest(http.MethodPost, "/api/v1/journal-entries", strings.NewReader(tc.body)), user)
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus == http.StatusCreated {
				assert.Equal(t, "/api/v1/journal-entries/42", rec.Header().Get("Location"))
				require.NotNil(t, svc.draft)
				assert.Equal(t, &user, svc.draft.CreatedBy)
				assert.True(t, svc.draft.Items[0].Debit.Equal(decimal.NewFromInt(100)))

				data, _ := decodeResponse(t, rec)
				assert.Equal(t, "draft", data["status"])
				assert.Equal(t, "100.00", data["total_debit"])
				return
			}
			assert.Nil(t, svc.draft)
			if len(tc.wantFields) > 0 {
				var resp struct {
					Error struct {
						Details []FieldError `json:"details"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				var fields []string
				for _, f := range resp.Error.Details {
					fields = append(fields, f.Field)
				}
				assert.Equal(t, tc.wantFields, fields)
			}
		})
	}
}

func TestJournalHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("Post: %w", domain.ErrNotFound), http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"already posted", domain.ErrEntryAlreadyPosted, http.StatusConflict, "ENTRY_ALREADY_POSTED"},
		{
			"unbalanced",
			&domain.UnbalancedEntryError{EntryID: 7, TotalDebit: decimal.NewFromInt(100), TotalCredit: decimal.NewFromInt(90)},
			http.StatusUnprocessableEntity, "UNBALANCED_ENTRY",
		},
		{"inactive account", domain.ErrAccountInactive, http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE"},
		{"unexpected", fmt.Errorf("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewJournalHandler(&mockJournalService{err: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journal-entries/7/post", nil)
			req.SetPathValue("id", "7")
			rec := httptest.NewRecorder()

			h.Post(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			_, apiErr := decodeResponse(t, rec)
			require.NotNil(t, apiErr)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestJournalHandler_UnbalancedDetails(t *testing.T) {
	err := &domain.UnbalancedEntryError{EntryID: 7, TotalDebit: decimal.NewFromInt(100), TotalCredit: decimal.RequireFromString("99.5")}
	h := NewJournalHandler(&mockJournalService{err: err})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/journal-entries/7/post", nil)
	req.SetPathValue("id", "7")
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	assert.JSONEq(t, `{"entry_id":7,"total_debit":"100.00","total_credit":"99.50"}`, extractDetails(t, rec))
}

func extractDetails(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return string(resp.Error.Details)
}

func TestJournalHandler_Reverse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDate   time.Time
	}{
		{"empty body reverses today", "", http.StatusCreated, time.Time{}},
		{"explicit date", `{"date":"2024-02-01"}`, http.StatusCreated, domain.Date(2024, time.February, 1)},
		{"bad date", `{"date":"yesterday"}`, http.StatusBadRequest, time.Time{}},
		{"malformed body", `{`, http.StatusBadRequest, time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockJournalService{}
			h := NewJournalHandler(svc)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journal-entries/7/reverse", strings.NewReader(tc.body))
			req.SetPathValue("id", "7")
			rec := httptest.NewRecorder()

			h.Reverse(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus != http.StatusCreated {
				assert.Nil(t, svc.reversed)
				return
			}
			require.NotNil(t, svc.reversed)
			assert.True(t, tc.wantDate.Equal(svc.reversed.Date))
			assert.Equal(t, "/api/v1/journal-entries/8", rec.Header().Get("Location"))
			data, _ := decodeResponse(t, rec)
			assert.EqualValues(t, 7, data["reverses_entry_id"])
		})
	}
}

func TestJournalHandler_BadPathID(t *testing.T) {
	h := NewJournalHandler(&mockJournalService{})
	for _, id := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/journal-entries/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestJournalHandler_ListValidation(t *testing.T) {
	h := NewJournalHandler(&mockJournalService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal-entries?start_date=01-01-2024&limit=-1", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
