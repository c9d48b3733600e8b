package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type VarianceRow struct {
	Period   domain.Period
	Budget   decimal.Decimal
	Actual   decimal.Decimal
	Variance decimal.Decimal
	// VariancePct is nil when the budget is zero.
	VariancePct *decimal.Decimal
}

type AccountVariance struct {
	Account     domain.Account
	Rows        []VarianceRow
	Budget      decimal.Decimal
	Actual      decimal.Decimal
	Variance    decimal.Decimal
	VariancePct *decimal.Decimal
}

type BudgetVariance struct {
	Budget      domain.Budget
	Start       time.Time
	End         time.Time
	Accounts    []AccountVariance
	Budgeted    decimal.Decimal
	Actual      decimal.Decimal
	Variance    decimal.Decimal
	VariancePct *decimal.Decimal
}

// BudgetVariance compares budgeted amounts with actuals for each budget
// period overlapping [start, end]. Actuals cover the full period window. Zero
// start or end defaults to the budget's year bounds.
func (s *Service) BudgetVariance(ctx context.Context, budgetID int64, start, end time.Time) (*BudgetVariance, error) {
	ctx, span := s.tracer.Start(ctx, "report.BudgetVariance")
	defer span.End()

	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("BudgetVariance: %w", err)
	}
	if start.IsZero() {
		start = budget.StartDate()
	}
	if end.IsZero() {
		end = budget.EndDate()
	}
	start, end = domain.TruncateDay(start), domain.TruncateDay(end)
	if err := domain.Between(start, end).Validate(); err != nil {
		return nil, fmt.Errorf("BudgetVariance: %w", err)
	}

	allPeriods, err := domain.GeneratePeriods(budget.PeriodType, budget.Year)
	if err != nil {
		return nil, fmt.Errorf("BudgetVariance: %w", err)
	}
	var periods []domain.Period
	for _, p := range allPeriods {
		if p.Overlaps(start, end) {
			periods = append(periods, p)
		}
	}

	type lineKey struct {
		account int64
		period  int
	}
	budgeted := make(map[lineKey]decimal.Decimal)
	var ids []int64
	seen := make(map[int64]bool)
	for _, l := range budget.Lines {
		k := lineKey{l.AccountID, l.Period}
		budgeted[k] = budgeted[k].Add(l.Amount)
		if !seen[l.AccountID] {
			seen[l.AccountID] = true
			ids = append(ids, l.AccountID)
		}
	}

	report := &BudgetVariance{
		Budget:   *budget,
		Start:    start,
		End:      end,
		Budgeted: decimal.Zero,
		Actual:   decimal.Zero,
	}
	if len(ids) == 0 {
		report.Variance = decimal.Zero
		return report, nil
	}

	accounts, err := s.accounts.List(ctx, domain.AccountFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("BudgetVariance: %w", err)
	}

	actuals := make([]map[int64]decimal.Decimal, len(periods))
	for i, p := range periods {
		actuals[i], err = s.calc.Balances(ctx, accounts, domain.Between(p.Start, p.End), false)
		if err != nil {
			return nil, fmt.Errorf("BudgetVariance: %s: %w", p.Label, err)
		}
	}

	for _, a := range accounts {
		av := AccountVariance{Account: a, Budget: decimal.Zero, Actual: decimal.Zero}
		for i, p := range periods {
			b, ok := budgeted[lineKey{a.ID, p.Number}]
			if !ok {
				b = decimal.Zero
			}
			actual := actuals[i][a.ID]
			row := VarianceRow{Period: p, Budget: b, Actual: actual, Variance: actual.Sub(b)}
			row.VariancePct = variancePct(row.Variance, b)
			av.Rows = append(av.Rows, row)
			av.Budget = av.Budget.Add(b)
			av.Actual = av.Actual.Add(actual)
		}
		av.Variance = av.Actual.Sub(av.Budget)
		av.VariancePct = variancePct(av.Variance, av.Budget)

		report.Accounts = append(report.Accounts, av)
		report.Budgeted = report.Budgeted.Add(av.Budget)
		report.Actual = report.Actual.Add(av.Actual)
	}
	report.Variance = report.Actual.Sub(report.Budgeted)
	report.VariancePct = variancePct(report.Variance, report.Budgeted)
	return report, nil
}

func variancePct(variance, budget decimal.Decimal) *decimal.Decimal {
	if budget.IsZero() {
		return nil
	}
	pct := variance.Div(budget).Mul(hundred).Round(2)
	return &pct
}
