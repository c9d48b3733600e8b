package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type ItemParams struct {
	AccountID   int64
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

type DraftParams struct {
	Date        time.Time
	Reference   string
	Description string
	Items       []ItemParams
	CreatedBy   *uuid.UUID
	// AllowInactive lets a draft use deactivated accounts. The configured
	// default applies when false.
	AllowInactive bool
}

func (p *DraftParams) normalize() {
	p.Reference = strings.TrimSpace(p.Reference)
	p.Description = strings.TrimSpace(p.Description)
	if !p.Date.IsZero() {
		p.Date = domain.TruncateDay(p.Date)
	}
	for i := range p.Items {
		p.Items[i].Description = strings.TrimSpace(p.Items[i].Description)
	}
}

// Validate checks the shape of a draft. Balance is not required until posting.
func (p DraftParams) Validate() error {
	if p.Date.IsZero() {
		return domain.NewValidationError("date", "required")
	}
	if utf8.RuneCountInString(p.Reference) > domain.MaxReferenceLen {
		return domain.NewValidationError("reference", "must be at most %d characters", domain.MaxReferenceLen)
	}
	if len(p.Items) == 0 {
		return domain.NewValidationError("items", "at least one item is required")
	}

	for i, it := range p.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.AccountID <= 0 {
			return domain.NewValidationError(field+".account_id", "required")
		}
		if err := domain.ValidateAmount(field+".debit", it.Debit); err != nil {
			return err
		}
		if err := domain.ValidateAmount(field+".credit", it.Credit); err != nil {
			return err
		}
		if it.Debit.IsZero() && it.Credit.IsZero() {
			return domain.NewValidationError(field, "debit or credit must be non-zero")
		}
	}
	return nil
}

// prepareDraft normalizes and validates params, checks every referenced
// account, and returns the items ready for insertion.
func (s *Service) prepareDraft(ctx context.Context, params *DraftParams) ([]domain.JournalItem, error) {
	params.normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	allowInactive := params.AllowInactive
	if s.config != nil && s.config.AllowInactivePosting {
		allowInactive = true
	}
	if err := s.checkAccounts(ctx, params.Items, allowInactive); err != nil {
		return nil, err
	}

	items := make([]domain.JournalItem, len(params.Items))
	for i, it := range params.Items {
		items[i] = domain.JournalItem{
			LineNo:       i + 1,
			AccountID:    it.AccountID,
			Description:  it.Description,
			DebitAmount:  it.Debit,
			CreditAmount: it.Credit,
		}
	}
	return items, nil
}

func (s *Service) checkAccounts(ctx context.Context, items []ItemParams, allowInactive bool) error {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if !seen[it.AccountID] {
			seen[it.AccountID] = true
			ids = append(ids, it.AccountID)
		}
	}

	accounts, err := s.accounts.List(ctx, domain.AccountFilter{IDs: ids})
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	byID := make(map[int64]domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	for i, it := range items {
		a, ok := byID[it.AccountID]
		if !ok {
			return domain.NewValidationError(fmt.Sprintf("items[%d].account_id", i), "account %d does not exist", it.AccountID)
		}
		if !a.IsActive && !allowInactive {
			return fmt.Errorf("%w: %s", domain.ErrAccountInactive, a.Code)
		}
	}
	return nil
}

// checkBalanced requires exact equality of the decimal totals and a non-zero
// amount.
func checkBalanced(entry *domain.JournalEntry) error {
	if len(entry.Items) == 0 {
		return domain.NewValidationError("items", "entry has no items")
	}
	debit, credit := entry.Totals()
	if !debit.Equal(credit) {
		return &domain.UnbalancedEntryError{EntryID: entry.ID, TotalDebit: debit, TotalCredit: credit}
	}
	if debit.IsZero() {
		return domain.NewValidationError("items", "entry total must be non-zero")
	}
	return nil
}
