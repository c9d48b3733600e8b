package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

type posting struct {
	entryID int64
	date    time.Time
	account int64
	debit   decimal.Decimal
	credit  decimal.Decimal
	posted  bool
}

// memBook is an in-memory journal that answers the balance queries the real
// calculator issues.
type memBook struct {
	accounts map[int64]domain.Account
	postings []posting
	nextID   int64
}

func newMemBook(accounts ...domain.Account) *memBook {
	b := &memBook{accounts: make(map[int64]domain.Account)}
	for _, a := range accounts {
		b.accounts[a.ID] = a
	}
	return b
}

type leg struct {
	account int64
	debit   string
	credit  string
}

func dr(account int64, amount string) leg { return leg{account: account, debit: amount} }
func cr(account int64, amount string) leg { return leg{account: account, credit: amount} }

func amt(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}

func (b *memBook) post(date string, legs ...leg) {
	b.add(true, date, legs...)
}

func (b *memBook) draft(date string, legs ...leg) {
	b.add(false, date, legs...)
}

func (b *memBook) add(posted bool, date string, legs ...leg) {
	b.nextID++
	d := day(date)
	for _, l := range legs {
		b.postings = append(b.postings, posting{
			entryID: b.nextID, date: d, account: l.account,
			debit: amt(l.debit), credit: amt(l.credit), posted: posted,
		})
	}
}

func (b *memBook) matching(account int64, w domain.Window, includeUnposted bool) []posting {
	var out []posting
	for _, p := range b.postings {
		if p.account != account || (!p.posted && !includeUnposted) {
			continue
		}
		if w.Start != nil && p.date.Before(*w.Start) {
			continue
		}
		if w.End != nil && p.date.After(*w.End) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (b *memBook) Totals(_ context.Context, account int64, w domain.Window, includeUnposted bool) (domain.Totals, error) {
	t := domain.Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, p := range b.matching(account, w, includeUnposted) {
		t = t.Add(domain.Totals{Debit: p.debit, Credit: p.credit})
	}
	return t, nil
}

func (b *memBook) TotalsByAccount(ctx context.Context, ids []int64, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error) {
	if len(ids) == 0 {
		for id := range b.accounts {
			ids = append(ids, id)
		}
	}
	out := make(map[int64]domain.Totals)
	for _, id := range ids {
		if len(b.matching(id, w, includeUnposted)) == 0 {
			continue
		}
		out[id], _ = b.Totals(ctx, id, w, includeUnposted)
	}
	return out, nil
}

func (b *memBook) Lines(_ context.Context, account int64, w domain.Window, includeUnposted bool) ([]domain.LedgerLine, error) {
	ps := b.matching(account, w, includeUnposted)
	sort.SliceStable(ps, func(i, j int) bool {
		if !ps[i].date.Equal(ps[j].date) {
			return ps[i].date.Before(ps[j].date)
		}
		return ps[i].entryID < ps[j].entryID
	})
	out := make([]domain.LedgerLine, len(ps))
	for i, p := range ps {
		out[i] = domain.LedgerLine{
			EntryID: p.entryID, EntryDate: p.date, IsPosted: p.posted,
			LineNo: 1, AccountID: p.account, Debit: p.debit, Credit: p.credit,
		}
	}
	return out, nil
}

func (b *memBook) MonthlyTotalsByType(_ context.Context, w domain.Window, types []domain.AccountType) ([]domain.MonthlyTypeTotals, error) {
	type key struct {
		month time.Time
		typ   domain.AccountType
	}
	want := make(map[domain.AccountType]bool)
	for _, t := range types {
		want[t] = true
	}
	sums := make(map[key]*domain.MonthlyTypeTotals)
	var keys []key
	for _, p := range b.postings {
		a := b.accounts[p.account]
		if !p.posted || !want[a.Type] {
			continue
		}
		if (w.Start != nil && p.date.Before(*w.Start)) || (w.End != nil && p.date.After(*w.End)) {
			continue
		}
		k := key{time.Date(p.date.Year(), p.date.Month(), 1, 0, 0, 0, 0, time.UTC), a.Type}
		if _, ok := sums[k]; !ok {
			sums[k] = &domain.MonthlyTypeTotals{Month: k.month, Type: k.typ, Debit: decimal.Zero, Credit: decimal.Zero}
			keys = append(keys, k)
		}
		sums[k].Debit = sums[k].Debit.Add(p.debit)
		sums[k].Credit = sums[k].Credit.Add(p.credit)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].month.Equal(keys[j].month) {
			return keys[i].month.Before(keys[j].month)
		}
		return keys[i].typ < keys[j].typ
	})
	out := make([]domain.MonthlyTypeTotals, len(keys))
	for i, k := range keys {
		out[i] = *sums[k]
	}
	return out, nil
}

func (b *memBook) List(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	types := make(map[domain.AccountType]bool)
	for _, t := range filter.Types {
		types[t] = true
	}
	ids := make(map[int64]bool)
	for _, id := range filter.IDs {
		ids[id] = true
	}
	var out []domain.Account
	for _, a := range b.accounts {
		if len(types) > 0 && !types[a.Type] {
			continue
		}
		if len(ids) > 0 && !ids[a.ID] {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (b *memBook) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := b.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

type memBudgets map[int64]*domain.Budget

func (m memBudgets) GetByID(_ context.Context, id int64) (*domain.Budget, error) {
	b, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

const (
	cashID     int64 = 1
	payableID  int64 = 2
	capitalID  int64 = 3
	salesID    int64 = 4
	rentID     int64 = 5
	salariesID int64 = 6
	bankID     int64 = 7
)

func parent(n int64) *int64 { return &n }

func chart() []domain.Account {
	return []domain.Account{
		{ID: cashID, Code: "1000", Name: "Current Assets", Type: domain.AccountTypeAsset, IsActive: true},
		{ID: bankID, Code: "1010", Name: "Bank", Type: domain.AccountTypeAsset, ParentID: parent(cashID), IsActive: true},
		{ID: payableID, Code: "2000", Name: "Accounts Payable", Type: domain.AccountTypeLiability, IsActive: true},
		{ID: capitalID, Code: "3000", Name: "Owner Capital", Type: domain.AccountTypeEquity, IsActive: true},
		{ID: salesID, Code: "4000", Name: "Sales", Type: domain.AccountTypeRevenue, IsActive: true},
		{ID: rentID, Code: "5000", Name: "Rent", Type: domain.AccountTypeExpense, IsActive: true},
		{ID: salariesID, Code: "5100", Name: "Salaries", Type: domain.AccountTypeExpense, IsActive: true},
	}
}

func newTestReports(book *memBook, budgets memBudgets) *Service {
	calc := ledger.NewBalanceCalculator(book, book)
	return NewService(book, calc, budgets, book)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
