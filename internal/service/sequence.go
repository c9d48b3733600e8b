package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

// SequenceAllocator hands out document numbers such as INV-20240115-001.
type SequenceAllocator struct {
	sequences  sequenceRepository
	tx         txRunner
	now        func() time.Time
	maxRetries uint64
	initial    time.Duration
}

func NewSequenceAllocator(sequences sequenceRepository, tx txRunner, cfg *config.Config) *SequenceAllocator {
	return &SequenceAllocator{
		sequences:  sequences,
		tx:         tx,
		now:        time.Now,
		maxRetries: cfg.SequenceMaxRetries,
		initial:    cfg.SequenceRetryInitial(),
	}
}

// Next allocates the next number of kind for the current date.
func (a *SequenceAllocator) Next(ctx context.Context, kind domain.SequenceKind) (*domain.IssuedNumber, error) {
	n, err := a.NextAt(ctx, kind, a.now())
	if err != nil {
		return nil, fmt.Errorf("Next: %w", err)
	}
	return n, nil
}

// NextAt allocates a number scoped to the day or month containing at.
// Conflicts are retried with exponential backoff; other errors are returned at once.
func (a *SequenceAllocator) NextAt(ctx context.Context, kind domain.SequenceKind, at time.Time) (*domain.IssuedNumber, error) {
	log := logging.FromContext(ctx)

	if !kind.IsValid() {
		return nil, fmt.Errorf("NextAt: %w: %q", domain.ErrUnknownSequence, kind)
	}
	periodKey, err := kind.PeriodKey(at)
	if err != nil {
		return nil, fmt.Errorf("NextAt: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.initial
	policy.MaxElapsedTime = 0

	var (
		issued  *domain.IssuedNumber
		attempt int
	)
	op := func() error {
		attempt++
		n, err := a.allocate(ctx, kind, periodKey)
		if err != nil {
			if errors.Is(err, domain.ErrSequenceConflict) {
				log.Warn("document number conflict, retrying",
					"kind", kind, "period", periodKey, "attempt", attempt, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}
		issued = n
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, a.maxRetries), ctx)); err != nil {
		return nil, fmt.Errorf("NextAt: %w", err)
	}

	log.Info("document number issued", "kind", kind, "number", issued.Number, "attempts", attempt)
	return issued, nil
}

// Peek returns the number Next would allocate now without consuming it. A
// concurrent allocation may take it first.
func (a *SequenceAllocator) Peek(ctx context.Context, kind domain.SequenceKind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("Peek: %w: %q", domain.ErrUnknownSequence, kind)
	}
	periodKey, err := kind.PeriodKey(a.now())
	if err != nil {
		return "", fmt.Errorf("Peek: %w", err)
	}
	current, err := a.sequences.Current(ctx, string(kind), periodKey)
	if err != nil {
		return "", fmt.Errorf("Peek: %w", err)
	}
	number, err := kind.FormatNumber(periodKey, current+1)
	if err != nil {
		return "", fmt.Errorf("Peek: %w", err)
	}
	return number, nil
}

func (a *SequenceAllocator) allocate(ctx context.Context, kind domain.SequenceKind, periodKey string) (*domain.IssuedNumber, error) {
	var issued *domain.IssuedNumber
	err := a.tx.WithTx(ctx, func(tx *sql.Tx) error {
		seq, err := a.sequences.Increment(ctx, tx, string(kind), periodKey)
		if err != nil {
			return err
		}
		number, err := kind.FormatNumber(periodKey, seq)
		if err != nil {
			return err
		}
		n := &domain.IssuedNumber{Number: number, Kind: kind, PeriodKey: periodKey, Seq: seq}
		if err := a.sequences.Register(ctx, tx, n); err != nil {
			return err
		}
		issued = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}
