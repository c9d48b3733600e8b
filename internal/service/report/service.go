// Package report assembles financial statements from account balances.
// Every figure comes from ledger.BalanceCalculator so the sign rule lives in
// one place.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

type accountLister interface {
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

type balanceCalculator interface {
	BalanceOf(ctx context.Context, account *domain.Account, w domain.Window, includeUnposted bool) (decimal.Decimal, error)
	Balances(ctx context.Context, accounts []domain.Account, w domain.Window, includeUnposted bool) (map[int64]decimal.Decimal, error)
	RunningBalanceFor(ctx context.Context, account *domain.Account, start, end time.Time, includeUnposted bool) (*ledger.RunningLedger, error)
	Snapshot(ctx context.Context, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error)
}

type budgetGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Budget, error)
}

type trendSource interface {
	MonthlyTotalsByType(ctx context.Context, w domain.Window, types []domain.AccountType) ([]domain.MonthlyTypeTotals, error)
}

type Service struct {
	accounts accountLister
	calc     balanceCalculator
	budgets  budgetGetter
	trend    trendSource
	tracer   trace.Tracer
}

func NewService(accounts accountLister, calc balanceCalculator, budgets budgetGetter, trend trendSource) *Service {
	return &Service{
		accounts: accounts,
		calc:     calc,
		budgets:  budgets,
		trend:    trend,
		tracer:   otel.Tracer("github.com/josh-kwaku/grey-ledger/internal/service/report"),
	}
}

type GLParams struct {
	Start           time.Time
	End             time.Time
	AccountIDs      []int64
	Types           []domain.AccountType
	IncludeUnposted bool
}

type GeneralLedger struct {
	Start       time.Time
	End         time.Time
	Accounts    []ledger.RunningLedger
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Warnings    []string
}

// GeneralLedger replays each selected account over [Start, End]. Accounts with
// no lines in the window and a zero opening balance are left out. Each closing
// balance is checked against an independent as-of computation.
func (s *Service) GeneralLedger(ctx context.Context, params GLParams) (*GeneralLedger, error) {
	ctx, span := s.tracer.Start(ctx, "report.GeneralLedger")
	defer span.End()

	if params.Start.IsZero() || params.End.IsZero() {
		return nil, fmt.Errorf("GeneralLedger: %w", domain.NewValidationError("start_date", "start_date and end_date are required"))
	}
	if err := domain.Between(params.Start, params.End).Validate(); err != nil {
		return nil, fmt.Errorf("GeneralLedger: %w", err)
	}
	for _, t := range params.Types {
		if !t.IsValid() {
			return nil, fmt.Errorf("GeneralLedger: %w", domain.NewValidationError("type", "unknown account type %q", t))
		}
	}

	accounts, err := s.accounts.List(ctx, domain.AccountFilter{Types: params.Types, IDs: params.AccountIDs})
	if err != nil {
		return nil, fmt.Errorf("GeneralLedger: %w", err)
	}

	report := &GeneralLedger{
		Start:       domain.TruncateDay(params.Start),
		End:         domain.TruncateDay(params.End),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	closingWindow := domain.AsOf(params.End)

	for i := range accounts {
		a := &accounts[i]
		rl, err := s.calc.RunningBalanceFor(ctx, a, params.Start, params.End, params.IncludeUnposted)
		if err != nil {
			return nil, fmt.Errorf("GeneralLedger: %s: %w", a.Code, err)
		}
		if len(rl.Lines) == 0 && rl.Opening.IsZero() {
			continue
		}

		expected, err := s.calc.BalanceOf(ctx, a, closingWindow, params.IncludeUnposted)
		if err != nil {
			return nil, fmt.Errorf("GeneralLedger: %s: %w", a.Code, err)
		}
		if !expected.Equal(rl.Closing) {
			msg := fmt.Sprintf("account %s: running closing %s differs from balance %s",
				a.Code, rl.Closing.StringFixed(domain.AmountScale), expected.StringFixed(domain.AmountScale))
			report.Warnings = append(report.Warnings, msg)
			logging.FromContext(ctx).Warn("general ledger closing mismatch",
				"account_id", a.ID,
				"closing", rl.Closing.String(),
				"expected", expected.String(),
			)
		}

		report.TotalDebit = report.TotalDebit.Add(rl.TotalDebit)
		report.TotalCredit = report.TotalCredit.Add(rl.TotalCredit)
		report.Accounts = append(report.Accounts, *rl)
	}

	span.SetAttributes(attribute.Int("report.accounts", len(report.Accounts)))
	return report, nil
}

// AccountBalance is one line of a statement. Synthetic lines have no backing
// account row.
type AccountBalance struct {
	Account   domain.Account
	Balance   decimal.Decimal
	Synthetic bool
}

type Section struct {
	Accounts []AccountBalance
	Total    decimal.Decimal
}

// sections groups the non-zero posted balances in w by account type. Totals
// are read before the chart; an account with items cannot be deleted, so
// every total finds its account.
func (s *Service) sections(ctx context.Context, w domain.Window) (map[domain.AccountType]Section, error) {
	totals, err := s.calc.Snapshot(ctx, w, false)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx, domain.AccountFilter{})
	if err != nil {
		return nil, err
	}

	out := make(map[domain.AccountType]Section, len(domain.AccountTypes))
	for _, t := range domain.AccountTypes {
		out[t] = Section{Total: decimal.Zero}
	}
	for _, a := range accounts {
		t, ok := totals[a.ID]
		if !ok {
			continue
		}
		b := a.Type.Signed(t.Debit, t.Credit)
		if b.IsZero() {
			continue
		}
		sec := out[a.Type]
		sec.Accounts = append(sec.Accounts, AccountBalance{Account: a, Balance: b})
		sec.Total = sec.Total.Add(b)
		out[a.Type] = sec
	}
	return out, nil
}
