package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

const NetIncomeLineName = "Current Period Net Income"

type ProfitAndLoss struct {
	Start     time.Time
	End       time.Time
	Revenue   Section
	Expenses  Section
	NetIncome decimal.Decimal
}

func (s *Service) ProfitAndLoss(ctx context.Context, start, end time.Time) (*ProfitAndLoss, error) {
	ctx, span := s.tracer.Start(ctx, "report.ProfitAndLoss")
	defer span.End()

	w := domain.Between(start, end)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("ProfitAndLoss: %w", err)
	}

	secs, err := s.sections(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("ProfitAndLoss: %w", err)
	}
	revenue, expenses := secs[domain.AccountTypeRevenue], secs[domain.AccountTypeExpense]

	return &ProfitAndLoss{
		Start:     *w.Start,
		End:       *w.End,
		Revenue:   revenue,
		Expenses:  expenses,
		NetIncome: revenue.Total.Sub(expenses.Total),
	}, nil
}

type BalanceSheet struct {
	AsOf                      time.Time
	Assets                    Section
	Liabilities               Section
	Equity                    Section
	NetIncome                 decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	Balanced                  bool
	Warnings                  []string
}

// BalanceSheet folds cumulative net income into equity as a synthetic line.
// All sections come from one snapshot, so a concurrent post cannot skew the
// check. An imbalance beyond one minor unit is reported as a warning, never
// hidden.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (*BalanceSheet, error) {
	ctx, span := s.tracer.Start(ctx, "report.BalanceSheet")
	defer span.End()

	w := domain.AsOf(asOf)
	sheet := &BalanceSheet{AsOf: *w.End}

	secs, err := s.sections(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("BalanceSheet: %w", err)
	}
	sheet.Assets = secs[domain.AccountTypeAsset]
	sheet.Liabilities = secs[domain.AccountTypeLiability]
	sheet.Equity = secs[domain.AccountTypeEquity]
	revenue, expenses := secs[domain.AccountTypeRevenue], secs[domain.AccountTypeExpense]

	sheet.NetIncome = revenue.Total.Sub(expenses.Total)
	if !sheet.NetIncome.IsZero() {
		sheet.Equity.Accounts = append(sheet.Equity.Accounts, AccountBalance{
			Account:   domain.Account{Name: NetIncomeLineName, Type: domain.AccountTypeEquity},
			Balance:   sheet.NetIncome,
			Synthetic: true,
		})
		sheet.Equity.Total = sheet.Equity.Total.Add(sheet.NetIncome)
	}

	sheet.TotalLiabilitiesAndEquity = sheet.Liabilities.Total.Add(sheet.Equity.Total)
	diff := sheet.Assets.Total.Sub(sheet.TotalLiabilitiesAndEquity).Abs()
	sheet.Balanced = diff.LessThan(domain.BalanceTolerance)
	if !sheet.Balanced {
		msg := fmt.Sprintf("assets %s do not equal liabilities and equity %s (difference %s)",
			sheet.Assets.Total.StringFixed(domain.AmountScale),
			sheet.TotalLiabilitiesAndEquity.StringFixed(domain.AmountScale),
			diff.StringFixed(domain.AmountScale))
		sheet.Warnings = append(sheet.Warnings, msg)
		logging.FromContext(ctx).Warn("balance sheet out of balance",
			"as_of", sheet.AsOf.Format(domain.DateLayout),
			"difference", diff.String(),
		)
	}
	return sheet, nil
}

type TrialBalanceLine struct {
	Account domain.Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

type TrialBalance struct {
	AsOf        time.Time
	Lines       []TrialBalanceLine
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Balanced    bool
}

// TrialBalance puts each non-zero balance in the debit or credit column
// according to its sign and the account's normal side.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (*TrialBalance, error) {
	ctx, span := s.tracer.Start(ctx, "report.TrialBalance")
	defer span.End()

	w := domain.AsOf(asOf)
	accounts, err := s.accounts.List(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("TrialBalance: %w", err)
	}
	balances, err := s.calc.Balances(ctx, accounts, w, false)
	if err != nil {
		return nil, fmt.Errorf("TrialBalance: %w", err)
	}

	tb := &TrialBalance{AsOf: *w.End, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, a := range accounts {
		b := balances[a.ID]
		if b.IsZero() {
			continue
		}
		line := TrialBalanceLine{Account: a, Debit: decimal.Zero, Credit: decimal.Zero}
		debitSide := a.Type.NormalSide() == domain.NormalDebit
		if b.IsNegative() {
			debitSide = !debitSide
		}
		if debitSide {
			line.Debit = b.Abs()
		} else {
			line.Credit = b.Abs()
		}
		tb.TotalDebit = tb.TotalDebit.Add(line.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(line.Credit)
		tb.Lines = append(tb.Lines, line)
	}
	tb.Balanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb, nil
}

type TreeNode struct {
	Account  domain.Account
	Balance  decimal.Decimal
	Total    decimal.Decimal
	Children []*TreeNode
}

// AccountTreeBalances returns the chart with each account's own balance and
// a total that includes descendants of the same type.
func (s *Service) AccountTreeBalances(ctx context.Context, asOf time.Time) ([]*TreeNode, error) {
	accounts, err := s.accounts.List(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("AccountTreeBalances: %w", err)
	}
	balances, err := s.calc.Balances(ctx, accounts, domain.AsOf(asOf), false)
	if err != nil {
		return nil, fmt.Errorf("AccountTreeBalances: %w", err)
	}

	roots := domain.BuildTree(accounts)
	out := make([]*TreeNode, len(roots))
	for i, r := range roots {
		out[i] = rollUp(r, balances)
	}
	return out, nil
}

func rollUp(n *domain.AccountNode, balances map[int64]decimal.Decimal) *TreeNode {
	own, ok := balances[n.ID]
	if !ok {
		own = decimal.Zero
	}
	node := &TreeNode{Account: n.Account, Balance: own, Total: own}
	for _, c := range n.Children {
		child := rollUp(c, balances)
		if c.Type == n.Type {
			node.Total = node.Total.Add(child.Total)
		}
		node.Children = append(node.Children, child)
	}
	return node
}

type TrendRow struct {
	Month     time.Time
	Revenue   decimal.Decimal
	Expenses  decimal.Decimal
	NetIncome decimal.Decimal
}

type Summary struct {
	Start         time.Time
	End           time.Time
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
	Trend         []TrendRow
}

// Summary is the dashboard view: period income figures plus a monthly trend.
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "report.Summary")
	defer span.End()

	pl, err := s.ProfitAndLoss(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}

	monthly, err := s.trend.MonthlyTotalsByType(ctx, domain.Between(start, end),
		[]domain.AccountType{domain.AccountTypeRevenue, domain.AccountTypeExpense})
	if err != nil {
		return nil, fmt.Errorf("Summary: %w", err)
	}

	var trend []TrendRow
	for _, m := range monthly {
		if len(trend) == 0 || !trend[len(trend)-1].Month.Equal(m.Month) {
			trend = append(trend, TrendRow{Month: m.Month, Revenue: decimal.Zero, Expenses: decimal.Zero})
		}
		row := &trend[len(trend)-1]
		switch m.Type {
		case domain.AccountTypeRevenue:
			row.Revenue = row.Revenue.Add(m.Type.Signed(m.Debit, m.Credit))
		case domain.AccountTypeExpense:
			row.Expenses = row.Expenses.Add(m.Type.Signed(m.Debit, m.Credit))
		}
		row.NetIncome = row.Revenue.Sub(row.Expenses)
	}

	return &Summary{
		Start:         pl.Start,
		End:           pl.End,
		TotalRevenue:  pl.Revenue.Total,
		TotalExpenses: pl.Expenses.Total,
		NetIncome:     pl.NetIncome,
		Trend:         trend,
	}, nil
}
