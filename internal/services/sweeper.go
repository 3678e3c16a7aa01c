package services

import (
	"context"
	"github.com/rs/zerolog"
	"time"
)

type Evictor interface {
	Evict(cutoff time.Time) int
}

// Sweeper periodically drops measurements older than ttl.
type Sweeper struct {
	target   Evictor
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	done     chan struct{}
}

func NewSweeper(target Evictor, ttl, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		target:   target,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *Sweeper) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	removed := s.target.Evict(cutoff)
	if removed > 0 {
		s.logger.Debug().
			Int("removed", removed).
			Time("cutoff", cutoff).
			Msg("Evicted stale measurements")
	}
	return removed
}

// Done is closed once the loop started by Start has returned.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}
