package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	mu      sync.Mutex
	calls   []time.Time
	err     error
	removed int64
}

func (f *fakePurger) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, before)
	return f.removed, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdempotencyJanitor_SweepUsesClock(t *testing.T) {
	store := &fakePurger{removed: 3}
	j := NewIdempotencyJanitor(store, discardLogger(), time.Hour)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	j.sweep(context.Background())

	assert.Equal(t, []time.Time{fixed}, store.calls)
}

func TestIdempotencyJanitor_SweepErrorIsLogged(t *testing.T) {
	store := &fakePurger{err: errors.New("connection reset")}
	j := NewIdempotencyJanitor(store, discardLogger(), time.Hour)

	assert.NotPanics(t, func() { j.sweep(context.Background()) })
	assert.Equal(t, 1, store.count())
}

func TestIdempotencyJanitor_StartStopsOnCancel(t *testing.T) {
	store := &fakePurger{}
	j := NewIdempotencyJanitor(store, discardLogger(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
