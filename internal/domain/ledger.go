package domain

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JournalEntry struct {
	ID              int64
	EntryDate       time.Time
	Reference       string
	Description     string
	IsPosted        bool
	PostedAt        *time.Time
	PostedBy        *uuid.UUID
	ReversesEntryID *int64
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
	Items           []JournalItem
}

type JournalItem struct {
	ID             int64
	JournalEntryID int64
	LineNo         int
	AccountID      int64
	Description    string
	DebitAmount    decimal.Decimal
	CreditAmount   decimal.Decimal
}

// Net is the line's debit minus credit. Both sides may be non-zero.
func (i JournalItem) Net() decimal.Decimal {
	return i.DebitAmount.Sub(i.CreditAmount)
}

func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	return SumItems(e.Items)
}

func SumItems(items []JournalItem) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, it := range items {
		debit = debit.Add(it.DebitAmount)
		credit = credit.Add(it.CreditAmount)
	}
	return debit, credit
}

// Reversed returns copies of items with debit and credit swapped, in the
// same line order, detached from any entry.
func Reversed(items []JournalItem) []JournalItem {
	out := make([]JournalItem, len(items))
	for i, it := range items {
		out[i] = JournalItem{
			LineNo:       it.LineNo,
			AccountID:    it.AccountID,
			Description:  it.Description,
			DebitAmount:  it.CreditAmount,
			CreditAmount: it.DebitAmount,
		}
	}
	return out
}

// DefaultReference is used when an entry is stored without a reference.
func DefaultReference(id int64) string {
	return "JE-" + strconv.FormatInt(id, 10)
}

const (
	// MaxReferenceLen counts characters, not bytes.
	MaxReferenceLen           = 64
	ReversalDescriptionPrefix = "Reversal of: "
)

func ReversalReference(original *JournalEntry) string {
	ref := original.Reference
	if ref == "" {
		ref = DefaultReference(original.ID)
	}
	ref = "REV-" + ref
	if utf8.RuneCountInString(ref) > MaxReferenceLen {
		ref = string([]rune(ref)[:MaxReferenceLen])
	}
	return ref
}

type EntryStatus string

const (
	EntryStatusAll    EntryStatus = ""
	EntryStatusDraft  EntryStatus = "draft"
	EntryStatusPosted EntryStatus = "posted"
)

func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusAll, EntryStatusDraft, EntryStatusPosted:
		return true
	}
	return false
}

type EntryFilter struct {
	Start     *time.Time
	End       *time.Time
	Status    EntryStatus
	AccountID *int64
	Limit     int
	Offset    int
}

// Totals is the raw debit and credit sum of a set of items.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (t Totals) Add(o Totals) Totals {
	return Totals{Debit: t.Debit.Add(o.Debit), Credit: t.Credit.Add(o.Credit)}
}

// LedgerLine is one journal item as seen from its account, with its entry header.
type LedgerLine struct {
	EntryID          int64
	EntryDate        time.Time
	Reference        string
	EntryDescription string
	IsPosted         bool
	ItemID           int64
	LineNo           int
	AccountID        int64
	Description      string
	Debit            decimal.Decimal
	Credit           decimal.Decimal
}

// MonthlyTypeTotals is the raw activity of one account type in one calendar month.
type MonthlyTypeTotals struct {
	Month  time.Time
	Type   AccountType
	Debit  decimal.Decimal
	Credit decimal.Decimal
}
