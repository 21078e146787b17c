package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voxchat/voxbot/internal/config"
)

type sweepStoreStub struct {
	calls     atomic.Int64
	retention atomic.Int64
}

func (s *sweepStoreStub) DeleteStaleLoginTokens(_ context.Context, _ time.Time, retention time.Duration) (int64, error) {
	s.calls.Add(1)
	s.retention.Store(int64(retention))
	return 1, nil
}

func TestSweeperRunsImmediatelyAndOnInterval(t *testing.T) {
	t.Parallel()

	store := &sweepStoreStub{}
	sweeper := NewSweeper(store, config.Auth{SweepInterval: 20 * time.Millisecond, ExpiredRetention: 24 * time.Hour})

	ctx := context.Background()
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Second Start is a no-op.
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("repeat start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for store.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", store.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := time.Duration(store.retention.Load()); got != 24*time.Hour {
		t.Fatalf("retention passed to store = %v, want 24h", got)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := sweeper.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Repeat Stop is a no-op.
	if err := sweeper.Stop(stopCtx); err != nil {
		t.Fatalf("repeat stop: %v", err)
	}

	settled := store.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if store.calls.Load() != settled {
		t.Fatalf("sweeper kept running after Stop")
	}
}

func TestSweeperDefaults(t *testing.T) {
	t.Parallel()

	sweeper := NewSweeper(&sweepStoreStub{}, config.Auth{})
	if sweeper.interval != time.Hour {
		t.Fatalf("default interval = %v, want 1h", sweeper.interval)
	}
	if sweeper.retention != 24*time.Hour {
		t.Fatalf("default retention = %v, want 24h", sweeper.retention)
	}
}
