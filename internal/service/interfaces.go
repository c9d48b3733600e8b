package service

import (
	"context"
	"database/sql"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

// txRunner runs fn in a transaction that commits only when fn returns nil.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type accountRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error)
	Update(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	SetActive(ctx context.Context, id int64, active bool) error
	LockTree(ctx context.Context, tx *sql.Tx) error
	ParentLinks(ctx context.Context, tx *sql.Tx) (map[int64]int64, error)
	HasItems(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	HasChildren(ctx context.Context, tx *sql.Tx, id int64) (bool, error)
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
}

type budgetRepository interface {
	Create(ctx context.Context, tx *sql.Tx, b *domain.Budget) error
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
	List(ctx context.Context, year int) ([]domain.Budget, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Budget, error)
	ReplaceLines(ctx context.Context, tx *sql.Tx, budgetID int64, lines []domain.BudgetLine) error
}

type sequenceRepository interface {
	Increment(ctx context.Context, tx *sql.Tx, name, periodKey string) (int64, error)
	Register(ctx context.Context, tx *sql.Tx, n *domain.IssuedNumber) error
	Current(ctx context.Context, name, periodKey string) (int64, error)
}

// accountLister is the read side of the chart needed by budgets.
type accountLister interface {
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}
