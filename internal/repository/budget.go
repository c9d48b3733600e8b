package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

const budgetColumns = `id, name, description, year, period_type, is_active, created_by, created_at`

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.Budget) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO budgets (name, description, year, period_type, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		b.Name, b.Description, b.Year, b.PeriodType, b.IsActive, b.CreatedBy,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetByID loads the budget with its lines ordered by account and period.
func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*domain.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id,
	)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, budget_id, account_id, period, amount FROM budget_lines
		WHERE budget_id = $1 ORDER BY account_id, period`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByID: lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.BudgetLine
		if err := rows.Scan(&l.ID, &l.BudgetID, &l.AccountID, &l.Period, &l.Amount); err != nil {
			return nil, fmt.Errorf("GetByID: scan line: %w", err)
		}
		b.Lines = append(b.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByID: rows: %w", err)
	}
	return b, nil
}

func (r *BudgetRepository) List(ctx context.Context, year int) ([]domain.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		WHERE ($1 = 0 OR year = $1)
		ORDER BY year DESC, name`, year,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var budgets []domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Budget, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 FOR UPDATE`, id,
	)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return b, nil
}

// ReplaceLines deletes every line of the budget and inserts lines in their place.
func (r *BudgetRepository) ReplaceLines(ctx context.Context, tx *sql.Tx, budgetID int64, lines []domain.BudgetLine) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_lines WHERE budget_id = $1`, budgetID); err != nil {
		return fmt.Errorf("ReplaceLines: delete: %w", err)
	}

	for i := range lines {
		l := &lines[i]
		l.BudgetID = budgetID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO budget_lines (budget_id, account_id, period, amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			budgetID, l.AccountID, l.Period, l.Amount,
		).Scan(&l.ID)
		if err != nil {
			switch {
			case isUniqueViolation(err, "budget_lines_period_key"):
				return fmt.Errorf("ReplaceLines: %w", domain.NewValidationError("lines",
					"account %d period %d appears more than once", l.AccountID, l.Period))
			case isForeignKeyViolation(err):
				return fmt.Errorf("ReplaceLines: account %d: %w", l.AccountID, domain.ErrNotFound)
			}
			return fmt.Errorf("ReplaceLines: insert: %w", err)
		}
	}
	return nil
}

func scanBudget(s scanner) (*domain.Budget, error) {
	var b domain.Budget
	if err := s.Scan(
		&b.ID, &b.Name, &b.Description, &b.Year, &b.PeriodType, &b.IsActive,
		&b.CreatedBy, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}
