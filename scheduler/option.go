package scheduler

import (
	"log/slog"
	"time"

	"github.com/viant/authsession/internal/clock"
)

type Option func(*Scheduler)

// WithClock sets clock
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithLead sets the refresh lead time
func WithLead(lead time.Duration) Option {
	return func(s *Scheduler) {
		if lead > 0 {
			s.lead = lead
		}
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}
