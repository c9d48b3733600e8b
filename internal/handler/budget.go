package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/grey-ledger/internal/auth"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/service"
)

type budgetService interface {
	CreateBudget(ctx context.Context, params service.CreateBudgetParams) (*domain.Budget, error)
	SetLines(ctx context.Context, budgetID int64, lines []service.BudgetLineParams) (*domain.Budget, error)
	GetBudget(ctx context.Context, id int64) (*domain.Budget, error)
	ListBudgets(ctx context.Context, year int) ([]domain.Budget, error)
}

type BudgetHandler struct {
	budgets budgetService
}

func NewBudgetHandler(budgets budgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type budgetLineRequest struct {
	AccountID int64  `json:"account_id"`
	Period    int    `json:"period"`
	Amount    string `json:"amount"`
}

type createBudgetRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Year        int                 `json:"year"`
	PeriodType  string              `json:"period_type"`
	Lines       []budgetLineRequest `json:"lines"`
}

type setLinesRequest struct {
	Lines []budgetLineRequest `json:"lines"`
}

func parseBudgetLines(reqs []budgetLineRequest) ([]service.BudgetLineParams, []FieldError) {
	var errs []FieldError
	lines := make([]service.BudgetLineParams, 0, len(reqs))
	for i, l := range reqs {
		amt, err := domain.ParseAmount(fmt.Sprintf("lines[%d].amount", i), l.Amount)
		if err != nil {
			errs = append(errs, fieldError(err))
			continue
		}
		lines = append(lines, service.BudgetLineParams{AccountID: l.AccountID, Period: l.Period, Amount: amt})
	}
	return lines, errs
}

type budgetLineDTO struct {
	AccountID int64  `json:"account_id"`
	Period    int    `json:"period"`
	Amount    string `json:"amount"`
}

type budgetDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Year        int             `json:"year"`
	PeriodType  string          `json:"period_type"`
	IsActive    bool            `json:"is_active"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []budgetLineDTO `json:"lines,omitempty"`
}

func toBudgetDTO(b *domain.Budget) budgetDTO {
	dto := budgetDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Year:        b.Year,
		PeriodType:  string(b.PeriodType),
		IsActive:    b.IsActive,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
	}
	for _, l := range b.Lines {
		dto.Lines = append(dto.Lines, budgetLineDTO{AccountID: l.AccountID, Period: l.Period, Amount: amount(l.Amount)})
	}
	return dto
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	lines, fields := parseBudgetLines(req.Lines)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	budget, err := h.budgets.CreateBudget(r.Context(), service.CreateBudgetParams{
		Name:        req.Name,
		Description: req.Description,
		Year:        req.Year,
		PeriodType:  domain.PeriodType(req.PeriodType),
		CreatedBy:   auth.UserIDPtr(r.Context()),
		Lines:       lines,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("budget creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/budgets/%d", budget.ID))
	RespondSuccess(w, http.StatusCreated, toBudgetDTO(budget))
}

func (h *BudgetHandler) SetLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}
	var req setLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	lines, fields := parseBudgetLines(req.Lines)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	budget, err := h.budgets.SetLines(r.Context(), id, lines)
	if err != nil {
		logging.FromContext(r.Context()).Warn("budget line update failed", "budget_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBudgetDTO(budget))
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}
	budget, err := h.budgets.GetBudget(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBudgetDTO(budget))
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	year := q.integer("year", 0)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	budgets, err := h.budgets.ListBudgets(r.Context(), year)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	dtos := make([]budgetDTO, len(budgets))
	for i := range budgets {
		dtos[i] = toBudgetDTO(&budgets[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
