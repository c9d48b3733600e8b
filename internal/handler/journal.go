package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

type journalService interface {
	CreateDraft(ctx context.Context, params ledger.DraftParams) (*domain.JournalEntry, error)
	UpdateDraft(ctx context.Context, id int64, params ledger.DraftParams) (*domain.JournalEntry, error)
	Post(ctx context.Context, id int64, postedBy *uuid.UUID) (*domain.JournalEntry, error)
	Delete(ctx context.Context, id int64) error
	Reverse(ctx context.Context, id int64, params ledger.ReverseParams) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, id int64) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, error)
}

type JournalHandler struct {
	journal journalService
}

func NewJournalHandler(journal journalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

type journalItemRequest struct {
	AccountID   int64  `json:"account_id"`
	Description string `json:"description"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

type draftRequest struct {
	Date          string               `json:"date"`
	Reference     string               `json:"reference"`
	Description   string               `json:"description"`
	AllowInactive bool                 `json:"allow_inactive"`
	Items         []journalItemRequest `json:"items"`
}

// toParams parses dates and amounts strictly; a malformed amount is an
// error, never zero.
func (r draftRequest) toParams() (ledger.DraftParams, []FieldError) {
	var errs []FieldError
	params := ledger.DraftParams{
		Reference:     r.Reference,
		Description:   r.Description,
		AllowInactive: r.AllowInactive,
	}

	date, err := domain.ParseDate("date", r.Date)
	if err != nil {
		errs = append(errs, fieldError(err))
	}
	params.Date = date

	if len(r.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, it := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		debit, err := domain.ParseOptionalAmount(field+".debit", it.Debit)
		if err != nil {
			errs = append(errs, fieldError(err))
		}
		credit, err := domain.ParseOptionalAmount(field+".credit", it.Credit)
		if err != nil {
			errs = append(errs, fieldError(err))
		}
		params.Items = append(params.Items, ledger.ItemParams{
			AccountID:   it.AccountID,
			Description: it.Description,
			Debit:       debit,
			Credit:      credit,
		})
	}
	return params, errs
}

func fieldError(err error) FieldError {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return FieldError{Field: ve.Field, Message: ve.Message}
	}
	return FieldError{Message: err.Error()}
}

type reverseRequest struct {
	Date string `json:"date"`
}

func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	params, fields := req.toParams()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}
	params.CreatedBy = auth.UserIDPtr(r.Context())

	entry, err := h.journal.CreateDraft(r.Context(), params)
	if err != nil {
		logging.FromContext(r.Context()).Warn("journal draft creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/journal-entries/%d", entry.ID))
	RespondSuccess(w, http.StatusCreated, toJournalEntryDTO(entry))
}

func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	params, fields := req.toParams()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	entry, err := h.journal.UpdateDraft(r.Context(), id, params)
	if err != nil {
		logging.FromContext(r.Context()).Warn("journal draft update failed", "entry_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toJournalEntryDTO(entry))
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	entry, err := h.journal.GetEntry(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toJournalEntryDTO(entry))
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filter := domain.EntryFilter{
		Start:     q.datePtr("start_date"),
		End:       q.datePtr("end_date"),
		Status:    domain.EntryStatus(r.URL.Query().Get("status")),
		AccountID: q.int64Ptr("account_id"),
		Limit:     q.integer("limit", 0),
		Offset:    q.integer("offset", 0),
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	entries, err := h.journal.ListEntries(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list journal entries", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]journalEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toJournalEntryDTO(&entries[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.journal.Delete(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("journal draft deletion failed", "entry_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JournalHandler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	entry, err := h.journal.Post(r.Context(), id, auth.UserIDPtr(r.Context()))
	if err != nil {
		logging.FromContext(r.Context()).Warn("journal entry posting failed", "entry_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toJournalEntryDTO(entry))
}

func (h *JournalHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	// The body is optional; an empty one reverses as of today.
	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	params := ledger.ReverseParams{CreatedBy: auth.UserIDPtr(r.Context())}
	if req.Date != "" {
		date, err := domain.ParseDate("date", req.Date)
		if err != nil {
			RespondValidationError(w, []FieldError{fieldError(err)})
			return
		}
		params.Date = date
	}

	reversal, err := h.journal.Reverse(r.Context(), id, params)
	if err != nil {
		logging.FromContext(r.Context()).Warn("journal entry reversal failed", "entry_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/journal-entries/%d", reversal.ID))
	RespondSuccess(w, http.StatusCreated, toJournalEntryDTO(reversal))
}
