package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID          int64
	Name        string
	Description string
	Year        int
	PeriodType  PeriodType
	IsActive    bool
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
	Lines       []BudgetLine
}

type BudgetLine struct {
	ID        int64
	BudgetID  int64
	AccountID int64
	Period    int
	Amount    decimal.Decimal
}

// StartDate and EndDate bound the budget's calendar year.
func (b *Budget) StartDate() time.Time { return Date(b.Year, time.January, 1) }
func (b *Budget) EndDate() time.Time   { return Date(b.Year, time.December, 31) }
