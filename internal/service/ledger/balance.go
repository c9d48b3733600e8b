package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type balanceRepo interface {
	Totals(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) (domain.Totals, error)
	TotalsByAccount(ctx context.Context, ids []int64, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error)
	Lines(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) ([]domain.LedgerLine, error)
}

type accountGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
}

// BalanceCalculator derives account balances from journal items. Only posted
// entries count unless includeUnposted is set.
type BalanceCalculator struct {
	balances balanceRepo
	accounts accountGetter
}

func NewBalanceCalculator(balances balanceRepo, accounts accountGetter) *BalanceCalculator {
	return &BalanceCalculator{balances: balances, accounts: accounts}
}

func (c *BalanceCalculator) Balance(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) (decimal.Decimal, error) {
	account, err := c.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Balance: %w", err)
	}
	return c.BalanceOf(ctx, account, w, includeUnposted)
}

// BalanceOf is Balance for an account already loaded by the caller.
func (c *BalanceCalculator) BalanceOf(ctx context.Context, account *domain.Account, w domain.Window, includeUnposted bool) (decimal.Decimal, error) {
	if err := w.Validate(); err != nil {
		return decimal.Zero, fmt.Errorf("BalanceOf: %w", err)
	}
	t, err := c.balances.Totals(ctx, account.ID, w, includeUnposted)
	if err != nil {
		return decimal.Zero, fmt.Errorf("BalanceOf: %w", err)
	}
	return account.Type.Signed(t.Debit, t.Credit), nil
}

// BalanceAsOf is the cumulative posted balance up to and including asOf.
func (c *BalanceCalculator) BalanceAsOf(ctx context.Context, accountID int64, asOf time.Time) (decimal.Decimal, error) {
	b, err := c.Balance(ctx, accountID, domain.AsOf(asOf), false)
	if err != nil {
		return decimal.Zero, fmt.Errorf("BalanceAsOf: %w", err)
	}
	return b, nil
}

// Balances computes the balance of every given account in one query.
// Accounts without activity map to zero.
func (c *BalanceCalculator) Balances(ctx context.Context, accounts []domain.Account, w domain.Window, includeUnposted bool) (map[int64]decimal.Decimal, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	out := make(map[int64]decimal.Decimal, len(accounts))
	if len(accounts) == 0 {
		return out, nil
	}

	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	totals, err := c.balances.TotalsByAccount(ctx, ids, w, includeUnposted)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}

	for _, a := range accounts {
		t, ok := totals[a.ID]
		if !ok {
			out[a.ID] = decimal.Zero
			continue
		}
		out[a.ID] = a.Type.Signed(t.Debit, t.Credit)
	}
	return out, nil
}

// Snapshot returns raw totals for every account with activity in w. They come
// from a single statement, so they agree with each other even while other
// entries are being posted.
func (c *BalanceCalculator) Snapshot(ctx context.Context, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}
	totals, err := c.balances.TotalsByAccount(ctx, nil, w, includeUnposted)
	if err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}
	return totals, nil
}

type RunningLine struct {
	domain.LedgerLine
	Balance decimal.Decimal
}

type RunningLedger struct {
	Account     domain.Account
	Opening     decimal.Decimal
	Closing     decimal.Decimal
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Lines       []RunningLine
}

func (c *BalanceCalculator) RunningBalance(ctx context.Context, accountID int64, start, end time.Time, includeUnposted bool) (*RunningLedger, error) {
	account, err := c.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("RunningBalance: %w", err)
	}
	return c.RunningBalanceFor(ctx, account, start, end, includeUnposted)
}

// RunningBalanceFor opens at the balance as of the day before start and
// applies each line in date, entry, line order.
func (c *BalanceCalculator) RunningBalanceFor(ctx context.Context, account *domain.Account, start, end time.Time, includeUnposted bool) (*RunningLedger, error) {
	w := domain.Between(start, end)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("RunningBalanceFor: %w", err)
	}

	opening, err := c.BalanceOf(ctx, account, domain.AsOf(domain.DayBefore(start)), includeUnposted)
	if err != nil {
		return nil, fmt.Errorf("RunningBalanceFor: opening: %w", err)
	}

	lines, err := c.balances.Lines(ctx, account.ID, w, includeUnposted)
	if err != nil {
		return nil, fmt.Errorf("RunningBalanceFor: %w", err)
	}

	ledger := &RunningLedger{
		Account:     *account,
		Opening:     opening,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Lines:       make([]RunningLine, 0, len(lines)),
	}
	running := opening
	for _, l := range lines {
		running = running.Add(account.Type.Signed(l.Debit, l.Credit))
		ledger.TotalDebit = ledger.TotalDebit.Add(l.Debit)
		ledger.TotalCredit = ledger.TotalCredit.Add(l.Credit)
		ledger.Lines = append(ledger.Lines, RunningLine{LedgerLine: l, Balance: running})
	}
	ledger.Closing = running
	return ledger, nil
}
