package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

const entryColumns = `id, entry_date, reference, description, is_posted, posted_at,
	posted_by, reverses_entry_id, created_by, created_at`

const itemColumns = `id, journal_entry_id, line_no, account_id, description,
	debit_amount, credit_amount`

type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// CreateEntry inserts the header and fills in ID and CreatedAt. A blank
// reference is replaced with the default JE-{id} form.
func (r *JournalRepository) CreateEntry(ctx context.Context, tx *sql.Tx, entry *domain.JournalEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO journal_entries (entry_date, reference, description, reverses_entry_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		dateArg(&entry.EntryDate), entry.Reference, entry.Description,
		entry.ReversesEntryID, entry.CreatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "journal_entries_reverses_key") {
			return fmt.Errorf("CreateEntry: %w", domain.ErrEntryAlreadyReversed)
		}
		return fmt.Errorf("CreateEntry: %w", err)
	}

	if entry.Reference == "" {
		entry.Reference = domain.DefaultReference(entry.ID)
		if _, err := tx.ExecContext(ctx,
			`UPDATE journal_entries SET reference = $1 WHERE id = $2`, entry.Reference, entry.ID,
		); err != nil {
			return fmt.Errorf("CreateEntry: default reference: %w", err)
		}
	}
	return nil
}

func (r *JournalRepository) UpdateHeader(ctx context.Context, tx *sql.Tx, entry *domain.JournalEntry) error {
	if entry.Reference == "" {
		entry.Reference = domain.DefaultReference(entry.ID)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE journal_entries SET entry_date = $1, reference = $2, description = $3
		WHERE id = $4 AND NOT is_posted`,
		dateArg(&entry.EntryDate), entry.Reference, entry.Description, entry.ID,
	)
	if err != nil {
		if isImmutableEntry(err) {
			return fmt.Errorf("UpdateHeader: %w", domain.ErrEntryAlreadyPosted)
		}
		return fmt.Errorf("UpdateHeader: %w", err)
	}
	return expectOneRow(res, "UpdateHeader")
}

// InsertItems writes items in order, numbering lines from 1.
func (r *JournalRepository) InsertItems(ctx context.Context, tx *sql.Tx, entryID int64, items []domain.JournalItem) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO journal_items (journal_entry_id, line_no, account_id, description, debit_amount, credit_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
	)
	if err != nil {
		return fmt.Errorf("InsertItems: prepare: %w", err)
	}
	defer stmt.Close()

	for i := range items {
		it := &items[i]
		it.JournalEntryID = entryID
		it.LineNo = i + 1
		err := stmt.QueryRowContext(ctx,
			entryID, it.LineNo, it.AccountID, it.Description, it.DebitAmount, it.CreditAmount,
		).Scan(&it.ID)
		if err != nil {
			switch {
			case isForeignKeyViolation(err):
				return fmt.Errorf("InsertItems: line %d: %w", it.LineNo, domain.ErrNotFound)
			case isImmutableEntry(err):
				return fmt.Errorf("InsertItems: %w", domain.ErrEntryAlreadyPosted)
			}
			return fmt.Errorf("InsertItems: line %d: %w", it.LineNo, err)
		}
	}
	return nil
}

func (r *JournalRepository) DeleteItems(ctx context.Context, tx *sql.Tx, entryID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM journal_items WHERE journal_entry_id = $1`, entryID,
	); err != nil {
		if isImmutableEntry(err) {
			return fmt.Errorf("DeleteItems: %w", domain.ErrEntryAlreadyPosted)
		}
		return fmt.Errorf("DeleteItems: %w", err)
	}
	return nil
}

// GetForUpdate locks the entry header row for the rest of the transaction.
func (r *JournalRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.JournalEntry, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 FOR UPDATE`, id,
	)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return e, nil
}

func (r *JournalRepository) GetItems(ctx context.Context, tx *sql.Tx, entryID int64) ([]domain.JournalItem, error) {
	items, err := listItems(ctx, tx, entryID)
	if err != nil {
		return nil, fmt.Errorf("GetItems: %w", err)
	}
	return items, nil
}

// GetByID loads the entry with its items.
func (r *JournalRepository) GetByID(ctx context.Context, id int64) (*domain.JournalEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, id,
	)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	e.Items, err = listItems(ctx, r.db, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

// List returns entry headers in ledger order, newest first, without items.
func (r *JournalRepository) List(ctx context.Context, filter domain.EntryFilter) ([]domain.JournalEntry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries e
		WHERE ($1::date IS NULL OR e.entry_date >= $1::date)
		  AND ($2::date IS NULL OR e.entry_date <= $2::date)
		  AND ($3 = '' OR ($3 = 'posted') = e.is_posted)
		  AND ($4::bigint IS NULL OR EXISTS (
		        SELECT 1 FROM journal_items i WHERE i.journal_entry_id = e.id AND i.account_id = $4::bigint))
		ORDER BY e.entry_date DESC, e.id DESC
		LIMIT $5 OFFSET $6`,
		dateArg(filter.Start), dateArg(filter.End), string(filter.Status),
		filter.AccountID, limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return entries, nil
}

// MarkPosted flips a draft to posted. It is the only write a posted row ever sees.
func (r *JournalRepository) MarkPosted(ctx context.Context, tx *sql.Tx, id int64, postedBy *uuid.UUID, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE journal_entries SET is_posted = TRUE, posted_at = $1, posted_by = $2
		WHERE id = $3 AND NOT is_posted`,
		at, postedBy, id,
	)
	if err != nil {
		return fmt.Errorf("MarkPosted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkPosted: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("MarkPosted: %w", domain.ErrEntryAlreadyPosted)
	}
	return nil
}

func (r *JournalRepository) DeleteEntry(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM journal_entries WHERE id = $1 AND NOT is_posted`, id,
	)
	if err != nil {
		if isImmutableEntry(err) {
			return fmt.Errorf("DeleteEntry: %w", domain.ErrEntryAlreadyPosted)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("DeleteEntry: %w", domain.ErrEntryAlreadyReversed)
		}
		return fmt.Errorf("DeleteEntry: %w", err)
	}
	return expectOneRow(res, "DeleteEntry")
}

// ReversalOf returns the id of the entry that reverses id, if any.
func (r *JournalRepository) ReversalOf(ctx context.Context, tx *sql.Tx, id int64) (*int64, error) {
	var reversalID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM journal_entries WHERE reverses_entry_id = $1`, id,
	).Scan(&reversalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ReversalOf: %w", err)
	}
	return &reversalID, nil
}

func listItems(ctx context.Context, q queryer, entryID int64) ([]domain.JournalItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM journal_items
		WHERE journal_entry_id = $1 ORDER BY line_no`, entryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.JournalItem
	for rows.Next() {
		var it domain.JournalItem
		if err := rows.Scan(
			&it.ID, &it.JournalEntryID, &it.LineNo, &it.AccountID, &it.Description,
			&it.DebitAmount, &it.CreditAmount,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func scanEntry(s scanner) (*domain.JournalEntry, error) {
	var (
		e        domain.JournalEntry
		postedAt sql.NullTime
		reverses sql.NullInt64
	)
	err := s.Scan(
		&e.ID, &e.EntryDate, &e.Reference, &e.Description, &e.IsPosted, &postedAt,
		&e.PostedBy, &reverses, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.EntryDate = domain.TruncateDay(e.EntryDate)
	if postedAt.Valid {
		e.PostedAt = &postedAt.Time
	}
	if reverses.Valid {
		e.ReversesEntryID = &reverses.Int64
	}
	return &e, nil
}
