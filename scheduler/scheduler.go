package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/internal/clock"
)

// DefaultLead is how long before expiry a proactive refresh fires.
const DefaultLead = 2 * time.Minute

// Scheduler arms at most one refresh timer, derived from the expiry of
// the most recently armed credential.
type Scheduler struct {
	trigger  func()
	clock    clock.Clock
	lead     time.Duration
	logger   *slog.Logger
	mux      sync.Mutex
	timer    *clock.Timer
	sequence uint64
	deadline time.Time
}

// Arm cancels any armed timer and schedules trigger at
// expiry - now - lead. Credentials without expiry arm nothing and are
// only renewed reactively. When that instant is already due, trigger is
// invoked synchronously before Arm returns.
func (s *Scheduler) Arm(cred *credential.Credential) {
	s.mux.Lock()
	s.cancel()
	if cred == nil || !cred.HasExpiry() {
		s.mux.Unlock()
		if cred != nil {
			s.logger.Debug("credential has no expiry, proactive refresh disabled", "generation", cred.Generation)
		}
		return
	}
	now := s.clock.Now()
	fireIn := cred.Expiry().Sub(now) - s.lead
	if fireIn <= 0 {
		s.mux.Unlock()
		s.logger.Debug("credential due for refresh", "generation", cred.Generation, "expiry", cred.Expiry())
		s.trigger()
		return
	}
	sequence := s.sequence
	s.deadline = now.Add(fireIn)
	s.timer = s.clock.AfterFunc(fireIn, func() { s.fire(sequence) })
	s.mux.Unlock()
	s.logger.Debug("refresh scheduled", "generation", cred.Generation, "in", fireIn)
}

// Cancel disarms the pending timer, if any.
func (s *Scheduler) Cancel() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cancel()
}

// Deadline returns when the armed timer fires.
func (s *Scheduler) Deadline() (time.Time, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.deadline, true
}

func (s *Scheduler) cancel() {
	s.sequence++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
}

func (s *Scheduler) fire(sequence uint64) {
	s.mux.Lock()
	if sequence != s.sequence || s.timer == nil {
		s.mux.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}
	s.mux.Unlock()
	s.trigger()
}

// New creates a scheduler invoking trigger when a refresh is due.
func New(trigger func(), options ...Option) *Scheduler {
	ret := &Scheduler{
		trigger: trigger,
		clock:   clock.Real(),
		lead:    DefaultLead,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
