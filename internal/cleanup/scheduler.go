// Package cleanup purges expired session records on a fixed interval.
package cleanup

import (
	"context"
	"time"

	"github.com/tokenkeeper/tokenkeeper/internal/logger"
	"github.com/tokenkeeper/tokenkeeper/internal/model"
)

const defaultInterval = 24 * time.Hour

// Scheduler runs the store's expiry purge once at start and then on every
// tick. Each run is independent and idempotent; a failed run is logged
// and retried only by the next scheduled one.
type Scheduler struct {
	store    model.SessionStore
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

func New(store model.SessionStore, interval time.Duration, logger *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		store:    store,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled. Runs execute serially in the calling
// goroutine, so they cannot overlap; a run outlasting the interval simply
// delays the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	count, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to purge expired sessions", "error", err.Error())
		return
	}
	s.logger.Info("purged expired sessions", "count", count)
}
