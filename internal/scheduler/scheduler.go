package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the part of the booking store the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refetches the remote booking partition so the
// availability grid and dashboard do not go stale between user actions.
type Scheduler struct {
	Store    Refresher
	Interval time.Duration
	Log      zerolog.Logger

	// OnTick, if set, is called after every refresh attempt.
	OnTick func(err error)
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	err := s.Store.Refresh(ctx)
	if err != nil && ctx.Err() == nil {
		s.Log.Warn().Err(err).Msg("scheduler: refresh failed")
	} else if err == nil {
		s.Log.Debug().Dur("took", time.Since(start)).Msg("scheduler: bookings refreshed")
	}
	if s.OnTick != nil {
		s.OnTick(err)
	}
}
