package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/service"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

type accountService interface {
	CreateAccount(ctx context.Context, params service.CreateAccountParams) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id int64, params service.UpdateAccountParams) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id int64) error
	ReactivateAccount(ctx context.Context, id int64) error
	DeleteAccount(ctx context.Context, id int64) error
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
	GetTree(ctx context.Context) ([]*domain.AccountNode, error)
}

type balanceService interface {
	Balance(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) (decimal.Decimal, error)
	RunningBalance(ctx context.Context, accountID int64, start, end time.Time, includeUnposted bool) (*ledger.RunningLedger, error)
}

type AccountHandler struct {
	accounts accountService
	balances balanceService
}

func NewAccountHandler(accounts accountService, balances balanceService) *AccountHandler {
	return &AccountHandler{accounts: accounts, balances: balances}
}

type createAccountRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	ParentID    *int64 `json:"parent_id"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Code == "" {
		errs = append(errs, FieldError{Field: "code", Message: "required"})
	}
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Type == "" {
		errs = append(errs, FieldError{Field: "type", Message: "required"})
	} else if !domain.AccountType(r.Type).IsValid() {
		errs = append(errs, FieldError{Field: "type", Message: "must be asset, liability, equity, revenue or expense"})
	}
	return errs
}

// updateAccountRequest is a PATCH body. An omitted parent_id keeps the
// parent, an explicit null moves the account to the root.
type updateAccountRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	ParentID    json.RawMessage `json:"parent_id"`
}

func (r updateAccountRequest) toParams() (service.UpdateAccountParams, []FieldError) {
	params := service.UpdateAccountParams{Name: r.Name, Description: r.Description}
	switch {
	case len(r.ParentID) == 0:
	case string(r.ParentID) == "null":
		params.ClearParent = true
	default:
		var parentID int64
		if err := json.Unmarshal(r.ParentID, &parentID); err != nil || parentID <= 0 {
			return params, []FieldError{{Field: "parent_id", Message: "must be a positive integer or null"}}
		}
		params.ParentID = &parentID
	}
	return params, nil
}

type accountDTO struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	NormalSide  string     `json:"normal_side"`
	ParentID    *int64     `json:"parent_id"`
	IsActive    bool       `json:"is_active"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		Description: a.Description,
		Type:        string(a.Type),
		NormalSide:  string(a.Type.NormalSide()),
		ParentID:    a.ParentID,
		IsActive:    a.IsActive,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
}

type accountNodeDTO struct {
	accountDTO
	Children []accountNodeDTO `json:"children"`
}

func toAccountNodeDTOs(nodes []*domain.AccountNode) []accountNodeDTO {
	out := make([]accountNodeDTO, len(nodes))
	for i, n := range nodes {
		out[i] = accountNodeDTO{
			accountDTO: toAccountDTO(&n.Account),
			Children:   toAccountNodeDTOs(n.Children),
		}
	}
	return out
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountParams{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Type:        domain.AccountType(req.Type),
		ParentID:    req.ParentID,
		CreatedBy:   auth.UserIDPtr(r.Context()),
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("account creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/accounts/%d", account.ID))
	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	filter := domain.AccountFilter{
		Types:      q.types("type"),
		ActiveOnly: q.boolean("active_only"),
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.accounts.GetTree(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load account tree", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountNodeDTOs(tree))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	params, fields := req.toParams()
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.UpdateAccount(r.Context(), id, params)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account update failed", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AccountHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var err error
	if active {
		err = h.accounts.ReactivateAccount(r.Context(), id)
	} else {
		err = h.accounts.DeactivateAccount(r.Context(), id)
	}
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("account deletion failed", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balanceDTO struct {
	AccountID       int64   `json:"account_id"`
	Start           *string `json:"start_date"`
	End             *string `json:"end_date"`
	IncludeUnposted bool    `json:"include_unposted"`
	Balance         string  `json:"balance"`
}

// Balance serves GET /accounts/{id}/balance. as_of is shorthand for an
// open-start window ending on that date.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	q := newQueryParams(r)
	window := domain.Window{Start: q.datePtr("start_date"), End: q.datePtr("end_date")}
	if asOf := q.datePtr("as_of"); asOf != nil {
		window = domain.AsOf(*asOf)
	}
	includeUnposted := q.boolean("include_unposted")
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	balance, err := h.balances.Balance(r.Context(), id, window, includeUnposted)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{
		AccountID:       id,
		Start:           formatDatePtr(window.Start),
		End:             formatDatePtr(window.End),
		IncludeUnposted: includeUnposted,
		Balance:         amount(balance),
	})
}

// Ledger serves an account's running balance between start_date and end_date.
func (h *AccountHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	q := newQueryParams(r)
	start := q.date("start_date", true)
	end := q.date("end_date", true)
	includeUnposted := q.boolean("include_unposted")
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	rl, err := h.balances.RunningBalance(r.Context(), id, start, end, includeUnposted)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toRunningLedgerDTO(rl))
}
