package ledger

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type mockTx struct{}

func (mockTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// memLedger keeps entries in memory and answers both the journal and the
// balance queries, so posting is visible to the calculator.
type memLedger struct {
	entries map[int64]*domain.JournalEntry
	items   map[int64][]domain.JournalItem
	nextID  int64
	marked  []int64
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[int64]*domain.JournalEntry), items: make(map[int64][]domain.JournalItem)}
}

func (m *memLedger) CreateEntry(_ context.Context, _ *sql.Tx, e *domain.JournalEntry) error {
	m.nextID++
	e.ID = m.nextID
	if e.Reference == "" {
		e.Reference = domain.DefaultReference(e.ID)
	}
	cp := *e
	cp.Items = nil
	m.entries[e.ID] = &cp
	return nil
}

func (m *memLedger) UpdateHeader(_ context.Context, _ *sql.Tx, e *domain.JournalEntry) error {
	cur, ok := m.entries[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.EntryDate, cur.Reference, cur.Description = e.EntryDate, e.Reference, e.Description
	return nil
}

func (m *memLedger) InsertItems(_ context.Context, _ *sql.Tx, entryID int64, items []domain.JournalItem) error {
	for i, it := range items {
		it.JournalEntryID = entryID
		it.LineNo = i + 1
		m.items[entryID] = append(m.items[entryID], it)
	}
	return nil
}

func (m *memLedger) DeleteItems(_ context.Context, _ *sql.Tx, entryID int64) error {
	delete(m.items, entryID)
	return nil
}

func (m *memLedger) GetForUpdate(_ context.Context, _ *sql.Tx, id int64) (*domain.JournalEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memLedger) GetItems(_ context.Context, _ *sql.Tx, entryID int64) ([]domain.JournalItem, error) {
	return append([]domain.JournalItem(nil), m.items[entryID]...), nil
}

func (m *memLedger) GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	e, err := m.GetForUpdate(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	e.Items, _ = m.GetItems(ctx, nil, id)
	return e, nil
}

func (m *memLedger) List(_ context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, e := range m.entries {
		if filter.Status == domain.EntryStatusPosted && !e.IsPosted {
			continue
		}
		if filter.Status == domain.EntryStatusDraft && e.IsPosted {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLedger) MarkPosted(_ context.Context, _ *sql.Tx, id int64, by *uuid.UUID, at time.Time) error {
	e := m.entries[id]
	e.IsPosted, e.PostedBy, e.PostedAt = true, by, &at
	m.marked = append(m.marked, id)
	return nil
}

func (m *memLedger) DeleteEntry(_ context.Context, _ *sql.Tx, id int64) error {
	delete(m.entries, id)
	delete(m.items, id)
	return nil
}

func (m *memLedger) ReversalOf(_ context.Context, _ *sql.Tx, id int64) (*int64, error) {
	for _, e := range m.entries {
		if e.ReversesEntryID != nil && *e.ReversesEntryID == id {
			rid := e.ID
			return &rid, nil
		}
	}
	return nil, nil
}

func inWindow(d time.Time, w domain.Window) bool {
	if w.Start != nil && d.Before(*w.Start) {
		return false
	}
	if w.End != nil && d.After(*w.End) {
		return false
	}
	return true
}

func (m *memLedger) Lines(_ context.Context, accountID int64, w domain.Window, includeUnposted bool) ([]domain.LedgerLine, error) {
	var out []domain.LedgerLine
	for id, e := range m.entries {
		if (!e.IsPosted && !includeUnposted) || !inWindow(e.EntryDate, w) {
			continue
		}
		for _, it := range m.items[id] {
			if it.AccountID != accountID {
				continue
			}
			out = append(out, domain.LedgerLine{
				EntryID: id, EntryDate: e.EntryDate, Reference: e.Reference,
				EntryDescription: e.Description, IsPosted: e.IsPosted,
				LineNo: it.LineNo, AccountID: it.AccountID, Description: it.Description,
				Debit: it.DebitAmount, Credit: it.CreditAmount,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.EntryID != b.EntryID {
			return a.EntryID < b.EntryID
		}
		return a.LineNo < b.LineNo
	})
	return out, nil
}

func (m *memLedger) Totals(ctx context.Context, accountID int64, w domain.Window, includeUnposted bool) (domain.Totals, error) {
	lines, _ := m.Lines(ctx, accountID, w, includeUnposted)
	t := domain.Totals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range lines {
		t = t.Add(domain.Totals{Debit: l.Debit, Credit: l.Credit})
	}
	return t, nil
}

func (m *memLedger) TotalsByAccount(ctx context.Context, ids []int64, w domain.Window, includeUnposted bool) (map[int64]domain.Totals, error) {
	if len(ids) == 0 {
		seen := make(map[int64]bool)
		for _, items := range m.items {
			for _, it := range items {
				if !seen[it.AccountID] {
					seen[it.AccountID] = true
					ids = append(ids, it.AccountID)
				}
			}
		}
	}
	out := make(map[int64]domain.Totals)
	for _, id := range ids {
		lines, _ := m.Lines(ctx, id, w, includeUnposted)
		if len(lines) == 0 {
			continue
		}
		out[id], _ = m.Totals(ctx, id, w, includeUnposted)
	}
	return out, nil
}

type memAccounts map[int64]domain.Account

func (m memAccounts) List(_ context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var out []domain.Account
	for _, id := range filter.IDs {
		if a, ok := m[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m memAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

const (
	cashID    int64 = 1
	revenueID int64 = 2
	expenseID int64 = 3
	oldID     int64 = 4
)

func testAccounts() memAccounts {
	return memAccounts{
		cashID:    {ID: cashID, Code: "1010", Name: "Cash", Type: domain.AccountTypeAsset, IsActive: true},
		revenueID: {ID: revenueID, Code: "4000", Name: "Sales", Type: domain.AccountTypeRevenue, IsActive: true},
		expenseID: {ID: expenseID, Code: "5000", Name: "Rent", Type: domain.AccountTypeExpense, IsActive: true},
		oldID:     {ID: oldID, Code: "1090", Name: "Old Bank", Type: domain.AccountTypeAsset, IsActive: false},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func debit(account int64, amount string) ItemParams {
	return ItemParams{AccountID: account, Debit: dec(amount)}
}

func credit(account int64, amount string) ItemParams {
	return ItemParams{AccountID: account, Credit: dec(amount)}
}
