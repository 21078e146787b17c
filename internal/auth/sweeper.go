package auth

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/voxchat/voxbot/internal/config"
)

type sweepStore interface {
	DeleteStaleLoginTokens(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

// Sweeper periodically deletes login tokens that can no longer transition:
// pending past expiry, or expired past the retention window. Housekeeping
// only, expiry itself is enforced at read time.
type Sweeper struct {
	store     sweepStore
	interval  time.Duration
	retention time.Duration

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewSweeper(store sweepStore, cfg config.Auth) *Sweeper {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	retention := cfg.ExpiredRetention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Sweeper{
		store:     store,
		interval:  interval,
		retention: retention,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel

	s.workersWg.Add(1)
	go func() {
		defer s.workersWg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(runCtx)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.sweep(runCtx)
			}
		}
	}()

	s.started = true
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	s.runMutex.Lock()
	if !s.started {
		s.runMutex.Unlock()
		return nil
	}
	s.started = false
	cancel := s.runCancel
	s.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.store.DeleteStaleLoginTokens(ctx, time.Now(), s.retention)
	if err != nil {
		log.WithError(err).WithField("object", "Sweeper").Error("failed to sweep stale login tokens")
		return
	}
	if deleted > 0 {
		log.WithFields(log.Fields{
			"object":  "Sweeper",
			"deleted": deleted,
		}).Debug("swept stale login tokens")
	}
}
