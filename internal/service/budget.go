package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type BudgetService struct {
	budgets  budgetRepository
	accounts accountLister
	tx       txRunner
}

func NewBudgetService(budgets budgetRepository, accounts accountLister, tx txRunner) *BudgetService {
	return &BudgetService{budgets: budgets, accounts: accounts, tx: tx}
}

type BudgetLineParams struct {
	AccountID int64
	Period    int
	Amount    decimal.Decimal
}

type CreateBudgetParams struct {
	Name        string
	Description string
	Year        int
	PeriodType  domain.PeriodType
	CreatedBy   *uuid.UUID
	Lines       []BudgetLineParams
}

func (s *BudgetService) CreateBudget(ctx context.Context, params CreateBudgetParams) (*domain.Budget, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, fmt.Errorf("CreateBudget: %w", domain.NewValidationError("name", "required"))
	}
	periods, err := domain.GeneratePeriods(params.PeriodType, params.Year)
	if err != nil {
		return nil, fmt.Errorf("CreateBudget: %w", err)
	}
	lines, err := s.checkLines(ctx, params.Lines, len(periods))
	if err != nil {
		return nil, fmt.Errorf("CreateBudget: %w", err)
	}

	budget := &domain.Budget{
		Name:        params.Name,
		Description: strings.TrimSpace(params.Description),
		Year:        params.Year,
		PeriodType:  params.PeriodType,
		IsActive:    true,
		CreatedBy:   params.CreatedBy,
	}
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.budgets.Create(ctx, tx, budget); err != nil {
			return err
		}
		return s.budgets.ReplaceLines(ctx, tx, budget.ID, lines)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateBudget: %w", err)
	}
	budget.Lines = lines

	logging.FromContext(ctx).Info("budget created",
		"budget_id", budget.ID, "year", budget.Year, "period_type", budget.PeriodType, "lines", len(lines))
	return budget, nil
}

// SetLines replaces every line of a budget.
func (s *BudgetService) SetLines(ctx context.Context, budgetID int64, params []BudgetLineParams) (*domain.Budget, error) {
	var budget *domain.Budget
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		budget, err = s.budgets.GetForUpdate(ctx, tx, budgetID)
		if err != nil {
			return err
		}
		periods, err := domain.GeneratePeriods(budget.PeriodType, budget.Year)
		if err != nil {
			return err
		}
		lines, err := s.checkLines(ctx, params, len(periods))
		if err != nil {
			return err
		}
		if err := s.budgets.ReplaceLines(ctx, tx, budgetID, lines); err != nil {
			return err
		}
		budget.Lines = lines
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("SetLines: %w", err)
	}

	logging.FromContext(ctx).Info("budget lines replaced", "budget_id", budgetID, "lines", len(budget.Lines))
	return budget, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, id int64) (*domain.Budget, error) {
	b, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetBudget: %w", err)
	}
	return b, nil
}

// ListBudgets returns budget headers; year 0 lists every year.
func (s *BudgetService) ListBudgets(ctx context.Context, year int) ([]domain.Budget, error) {
	budgets, err := s.budgets.List(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("ListBudgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) checkLines(ctx context.Context, params []BudgetLineParams, periodCount int) ([]domain.BudgetLine, error) {
	type key struct {
		account int64
		period  int
	}
	seen := make(map[key]bool, len(params))
	ids := make([]int64, 0, len(params))
	lines := make([]domain.BudgetLine, 0, len(params))

	for i, p := range params {
		field := fmt.Sprintf("lines[%d]", i)
		if p.Period < 1 || p.Period > periodCount {
			return nil, domain.NewValidationError(field+".period", "must be between 1 and %d", periodCount)
		}
		if err := domain.ValidateAmount(field+".amount", p.Amount); err != nil {
			return nil, err
		}
		k := key{p.AccountID, p.Period}
		if seen[k] {
			return nil, domain.NewValidationError(field, "account %d period %d appears more than once", p.AccountID, p.Period)
		}
		seen[k] = true
		ids = append(ids, p.AccountID)
		lines = append(lines, domain.BudgetLine{AccountID: p.AccountID, Period: p.Period, Amount: p.Amount})
	}

	if len(ids) == 0 {
		return lines, nil
	}
	accounts, err := s.accounts.List(ctx, domain.AccountFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("checkLines: %w", err)
	}
	known := make(map[int64]bool, len(accounts))
	for _, a := range accounts {
		known[a.ID] = true
	}
	for i, p := range params {
		if !known[p.AccountID] {
			return nil, domain.NewValidationError(fmt.Sprintf("lines[%d].account_id", i), "account %d does not exist", p.AccountID)
		}
	}
	return lines, nil
}
