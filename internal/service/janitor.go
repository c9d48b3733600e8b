package service

import (
	"context"
	"log/slog"
	"time"
)

type idempotencyPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// IdempotencyJanitor periodically deletes cached responses whose replay
// window has closed.
type IdempotencyJanitor struct {
	store    idempotencyPurger
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewIdempotencyJanitor(store idempotencyPurger, logger *slog.Logger, interval time.Duration) *IdempotencyJanitor {
	return &IdempotencyJanitor{
		store:    store,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (j *IdempotencyJanitor) Start(ctx context.Context) {
	j.logger.Info("idempotency janitor started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idempotency janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	n, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("failed to purge expired idempotency keys", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("expired idempotency keys purged", "rows", n)
	}
}
