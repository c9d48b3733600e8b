package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
)

// Amounts cross the API as fixed two-place decimal strings.
func amount(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}

func amountPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(domain.AmountScale)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

type journalItemDTO struct {
	ID          int64  `json:"id,omitempty"`
	LineNo      int    `json:"line_no"`
	AccountID   int64  `json:"account_id"`
	Description string `json:"description"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

type journalEntryDTO struct {
	ID              int64            `json:"id"`
	Date            string           `json:"date"`
	Reference       string           `json:"reference"`
	Description     string           `json:"description"`
	Status          string           `json:"status"`
	PostedAt        *time.Time       `json:"posted_at,omitempty"`
	PostedBy        *uuid.UUID       `json:"posted_by,omitempty"`
	ReversesEntryID *int64           `json:"reverses_entry_id,omitempty"`
	CreatedBy       *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	TotalDebit      string           `json:"total_debit"`
	TotalCredit     string           `json:"total_credit"`
	Items           []journalItemDTO `json:"items"`
}

func toJournalEntryDTO(e *domain.JournalEntry) journalEntryDTO {
	status := domain.EntryStatusDraft
	if e.IsPosted {
		status = domain.EntryStatusPosted
	}
	debit, credit := e.Totals()
	dto := journalEntryDTO{
		ID:              e.ID,
		Date:            formatDate(e.EntryDate),
		Reference:       e.Reference,
		Description:     e.Description,
		Status:          string(status),
		PostedAt:        e.PostedAt,
		PostedBy:        e.PostedBy,
		ReversesEntryID: e.ReversesEntryID,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		TotalDebit:      amount(debit),
		TotalCredit:     amount(credit),
		Items:           make([]journalItemDTO, len(e.Items)),
	}
	for i, it := range e.Items {
		dto.Items[i] = journalItemDTO{
			ID:          it.ID,
			LineNo:      it.LineNo,
			AccountID:   it.AccountID,
			Description: it.Description,
			Debit:       amount(it.DebitAmount),
			Credit:      amount(it.CreditAmount),
		}
	}
	return dto
}

type runningLineDTO struct {
	EntryID     int64  `json:"entry_id"`
	Date        string `json:"date"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	Posted      bool   `json:"posted"`
	LineNo      int    `json:"line_no"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Balance     string `json:"balance"`
}

type runningLedgerDTO struct {
	Account     accountDTO       `json:"account"`
	Opening     string           `json:"opening_balance"`
	Closing     string           `json:"closing_balance"`
	TotalDebit  string           `json:"total_debit"`
	TotalCredit string           `json:"total_credit"`
	Lines       []runningLineDTO `json:"lines"`
}

func toRunningLedgerDTO(rl *ledger.RunningLedger) runningLedgerDTO {
	dto := runningLedgerDTO{
		Account:     toAccountDTO(&rl.Account),
		Opening:     amount(rl.Opening),
		Closing:     amount(rl.Closing),
		TotalDebit:  amount(rl.TotalDebit),
		TotalCredit: amount(rl.TotalCredit),
		Lines:       make([]runningLineDTO, len(rl.Lines)),
	}
	for i, l := range rl.Lines {
		desc := l.Description
		if desc == "" {
			desc = l.EntryDescription
		}
		dto.Lines[i] = runningLineDTO{
			EntryID:     l.EntryID,
			Date:        formatDate(l.EntryDate),
			Reference:   l.Reference,
			Description: desc,
			Posted:      l.IsPosted,
			LineNo:      l.LineNo,
			Debit:       amount(l.Debit),
			Credit:      amount(l.Credit),
			Balance:     amount(l.Balance),
		}
	}
	return dto
}
