package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

type journalRepo interface {
	CreateEntry(ctx context.Context, tx *sql.Tx, entry *domain.JournalEntry) error
	UpdateHeader(ctx context.Context, tx *sql.Tx, entry *domain.JournalEntry) error
	InsertItems(ctx context.Context, tx *sql.Tx, entryID int64, items []domain.JournalItem) error
	DeleteItems(ctx context.Context, tx *sql.Tx, entryID int64) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.JournalEntry, error)
	GetItems(ctx context.Context, tx *sql.Tx, entryID int64) ([]domain.JournalItem, error)
	GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error)
	List(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, error)
	MarkPosted(ctx context.Context, tx *sql.Tx, id int64, postedBy *uuid.UUID, at time.Time) error
	DeleteEntry(ctx context.Context, tx *sql.Tx, id int64) error
	ReversalOf(ctx context.Context, tx *sql.Tx, id int64) (*int64, error)
}

type accountLister interface {
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Service is the journal engine: drafts, posting, deletion and reversal.
type Service struct {
	journal  journalRepo
	accounts accountLister
	tx       txRunner
	config   *config.Config
	now      func() time.Time
	tracer   trace.Tracer
}

func NewService(journal journalRepo, accounts accountLister, tx txRunner, cfg *config.Config) *Service {
	return &Service{
		journal:  journal,
		accounts: accounts,
		tx:       tx,
		config:   cfg,
		now:      time.Now,
		tracer:   otel.Tracer("github.com/josh-kwaku/grey-ledger/internal/service/ledger"),
	}
}

func (s *Service) CreateDraft(ctx context.Context, params DraftParams) (*domain.JournalEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreateDraft")
	defer span.End()

	items, err := s.prepareDraft(ctx, &params)
	if err != nil {
		return nil, fmt.Errorf("CreateDraft: %w", err)
	}

	entry := &domain.JournalEntry{
		EntryDate:   params.Date,
		Reference:   params.Reference,
		Description: params.Description,
		CreatedBy:   params.CreatedBy,
	}
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.journal.CreateEntry(ctx, tx, entry); err != nil {
			return err
		}
		return s.journal.InsertItems(ctx, tx, entry.ID, items)
	})
	if err != nil {
		return nil, fmt.Errorf("CreateDraft: %w", err)
	}
	entry.Items = items

	span.SetAttributes(attribute.Int64("entry.id", entry.ID))
	logging.FromContext(ctx).Info("journal draft created",
		"entry_id", entry.ID,
		"reference", entry.Reference,
		"lines", len(items),
	)
	return entry, nil
}

// UpdateDraft replaces the header and the whole item set of an unposted entry.
func (s *Service) UpdateDraft(ctx context.Context, id int64, params DraftParams) (*domain.JournalEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.UpdateDraft", trace.WithAttributes(attribute.Int64("entry.id", id)))
	defer span.End()

	items, err := s.prepareDraft(ctx, &params)
	if err != nil {
		return nil, fmt.Errorf("UpdateDraft: %w", err)
	}

	var entry *domain.JournalEntry
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		entry, err = s.journal.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if entry.IsPosted {
			return domain.ErrEntryAlreadyPosted
		}

		entry.EntryDate = params.Date
		entry.Reference = params.Reference
		entry.Description = params.Description
		if err := s.journal.UpdateHeader(ctx, tx, entry); err != nil {
			return err
		}
		if err := s.journal.DeleteItems(ctx, tx, id); err != nil {
			return err
		}
		return s.journal.InsertItems(ctx, tx, id, items)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateDraft: %w", err)
	}
	entry.Items = items

	logging.FromContext(ctx).Info("journal draft updated", "entry_id", id, "lines", len(items))
	return entry, nil
}

// Post re-checks the balance of a draft and marks it posted in one transaction.
func (s *Service) Post(ctx context.Context, id int64, postedBy *uuid.UUID) (*domain.JournalEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Post", trace.WithAttributes(attribute.Int64("entry.id", id)))
	defer span.End()

	var entry *domain.JournalEntry
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		entry, err = s.postLocked(ctx, tx, id, postedBy)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("Post: %w", err)
	}

	debit, _ := entry.Totals()
	logging.FromContext(ctx).Info("journal entry posted",
		"entry_id", entry.ID,
		"reference", entry.Reference,
		"total", debit.StringFixed(domain.AmountScale),
	)
	return entry, nil
}

// postLocked is the single posting path. It locks the header, re-reads the
// items inside tx and flips the posted flag only if debits equal credits.
func (s *Service) postLocked(ctx context.Context, tx *sql.Tx, id int64, postedBy *uuid.UUID) (*domain.JournalEntry, error) {
	entry, err := s.journal.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if entry.IsPosted {
		return nil, domain.ErrEntryAlreadyPosted
	}

	entry.Items, err = s.journal.GetItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkBalanced(entry); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if err := s.journal.MarkPosted(ctx, tx, id, postedBy, at); err != nil {
		return nil, err
	}
	entry.IsPosted = true
	entry.PostedAt = &at
	entry.PostedBy = postedBy
	return entry, nil
}

// Delete removes a draft and its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		entry, err := s.journal.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if entry.IsPosted {
			return domain.ErrEntryAlreadyPosted
		}
		return s.journal.DeleteEntry(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	logging.FromContext(ctx).Info("journal draft deleted", "entry_id", id)
	return nil
}

type ReverseParams struct {
	// Date of the reversing entry; zero means today.
	Date      time.Time
	CreatedBy *uuid.UUID
}

// Reverse offsets a posted entry with a new posted entry whose lines swap
// debit and credit. The original is never modified.
func (s *Service) Reverse(ctx context.Context, id int64, params ReverseParams) (*domain.JournalEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Reverse", trace.WithAttributes(attribute.Int64("entry.id", id)))
	defer span.End()

	date := params.Date
	if date.IsZero() {
		date = s.now()
	}
	date = domain.TruncateDay(date)

	var reversal *domain.JournalEntry
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		original, err := s.journal.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !original.IsPosted {
			return domain.ErrEntryNotPosted
		}
		existing, err := s.journal.ReversalOf(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w by entry %d", domain.ErrEntryAlreadyReversed, *existing)
		}

		items, err := s.journal.GetItems(ctx, tx, id)
		if err != nil {
			return err
		}

		draft := &domain.JournalEntry{
			EntryDate:       date,
			Reference:       domain.ReversalReference(original),
			Description:     domain.ReversalDescriptionPrefix + original.Description,
			ReversesEntryID: &original.ID,
			CreatedBy:       params.CreatedBy,
		}
		if err := s.journal.CreateEntry(ctx, tx, draft); err != nil {
			return err
		}
		if err := s.journal.InsertItems(ctx, tx, draft.ID, domain.Reversed(items)); err != nil {
			return err
		}

		reversal, err = s.postLocked(ctx, tx, draft.ID, params.CreatedBy)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("Reverse: %w", err)
	}

	logging.FromContext(ctx).Info("journal entry reversed",
		"entry_id", id,
		"reversal_id", reversal.ID,
		"reference", reversal.Reference,
	)
	return reversal, nil
}

func (s *Service) GetEntry(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	entry, err := s.journal.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetEntry: %w", err)
	}
	return entry, nil
}

func (s *Service) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	if !filter.Status.IsValid() {
		return nil, fmt.Errorf("ListEntries: %w", domain.NewValidationError("status", "must be draft or posted"))
	}
	if err := (domain.Window{Start: filter.Start, End: filter.End}).Validate(); err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	entries, err := s.journal.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	return entries, nil
}
