package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

type SequenceRepository struct {
	db *sql.DB
}

func NewSequenceRepository(db *sql.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Increment bumps the counter for (name, periodKey) and returns the new value.
// The counter never falls behind the highest number already registered for the
// period, so numbers issued outside the counter are skipped rather than reused.
// Concurrent callers serialize on the counter row.
func (r *SequenceRepository) Increment(ctx context.Context, tx *sql.Tx, name, periodKey string) (int64, error) {
	var value int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO document_sequences (name, period_key, value)
		VALUES ($1, $2, COALESCE((
			SELECT MAX(seq) FROM issued_numbers WHERE sequence_name = $1 AND period_key = $2
		), 0) + 1)
		ON CONFLICT (name, period_key) DO UPDATE
		SET value = GREATEST(document_sequences.value + 1, EXCLUDED.value),
			updated_at = now()
		RETURNING value`,
		name, periodKey,
	).Scan(&value)
	if err != nil {
		if isTransient(err) {
			return 0, fmt.Errorf("Increment: %w: %v", domain.ErrSequenceConflict, err)
		}
		return 0, fmt.Errorf("Increment: %w", err)
	}
	return value, nil
}

// Register records an issued number. The number column is unique, so a
// collision surfaces as ErrSequenceConflict.
func (r *SequenceRepository) Register(ctx context.Context, tx *sql.Tx, n *domain.IssuedNumber) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO issued_numbers (number, sequence_name, period_key, seq)
		VALUES ($1, $2, $3, $4)
		RETURNING issued_at`,
		n.Number, string(n.Kind), n.PeriodKey, n.Seq,
	).Scan(&n.IssuedAt)
	if err != nil {
		if isUniqueViolation(err, "") || isTransient(err) {
			return fmt.Errorf("Register: %w: %s", domain.ErrSequenceConflict, n.Number)
		}
		return fmt.Errorf("Register: %w", err)
	}
	return nil
}

// Current returns the highest value handed out for (name, periodKey), or 0.
// Numbers registered outside the counter count too, matching Increment.
func (r *SequenceRepository) Current(ctx context.Context, name, periodKey string) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx,
		`SELECT GREATEST(
			COALESCE((SELECT value FROM document_sequences WHERE name = $1 AND period_key = $2), 0),
			COALESCE((SELECT MAX(seq) FROM issued_numbers WHERE sequence_name = $1 AND period_key = $2), 0)
		)`,
		name, periodKey,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("Current: %w", err)
	}
	return value, nil
}
