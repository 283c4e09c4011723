package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/viant/authsession/credential"
	"github.com/viant/authsession/internal/clock"
	"github.com/viant/authsession/issuer"
	"github.com/viant/authsession/marker"
	"github.com/viant/authsession/refresh"
	"github.com/viant/authsession/scheduler"
	"github.com/viant/authsession/schema"
	"github.com/viant/authsession/transport"
	"golang.org/x/oauth2"
)

// Issuer is the credential-issuing endpoint used by a session.
type Issuer interface {
	refresh.Issuer
	Register(ctx context.Context, form *schema.RegisterForm) (*oauth2.Token, error)
	Login(ctx context.Context, form *schema.LoginForm) (*oauth2.Token, error)
	Logout(ctx context.Context, cred *credential.Credential) error
	Profile(ctx context.Context, doer issuer.Doer) (*schema.Profile, error)
}

// Session keeps a client authenticated: it stores the access credential,
// renews it shortly before expiry and transparently after a rejection,
// and exposes the resulting state to the application.
type Session struct {
	issuer      Issuer
	store       *credential.Store
	coordinator *refresh.Coordinator
	scheduler   *scheduler.Scheduler
	interceptor *transport.RoundTripper
	unsubscribe func()

	marker         marker.Marker
	markerTTL      time.Duration
	jar            http.CookieJar
	transport      http.RoundTripper
	clock          clock.Clock
	lead           time.Duration
	refreshTimeout time.Duration
	logger         *slog.Logger

	mux       sync.RWMutex
	state     State
	notifyMux sync.Mutex
	listeners []*listener
}

// Credential returns the current credential, nil when unauthenticated
func (s *Session) Credential() *credential.Credential {
	return s.store.Get()
}

// RefreshStale renews a credential the server rejected
func (s *Session) RefreshStale(ctx context.Context, stale *credential.Credential) (*credential.Credential, error) {
	return s.coordinator.RefreshStale(ctx, stale)
}

// RefreshSession renews the credential, joining an in-flight renewal if any.
func (s *Session) RefreshSession(ctx context.Context) (*credential.Credential, error) {
	return s.coordinator.Refresh(ctx)
}

// Register creates an account and signs in. Failures are returned as
// issued by the endpoint and leave the stored credential unchanged.
func (s *Session) Register(ctx context.Context, form *schema.RegisterForm) error {
	return s.signIn(ctx, "register", func() (*oauth2.Token, error) {
		return s.issuer.Register(ctx, form)
	})
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, form *schema.LoginForm) error {
	return s.signIn(ctx, "login", func() (*oauth2.Token, error) {
		return s.issuer.Login(ctx, form)
	})
}

func (s *Session) signIn(ctx context.Context, operation string, issue func() (*oauth2.Token, error)) error {
	s.setLoading(true)
	token, err := issue()
	if err != nil {
		s.setLoading(false)
		s.logger.Debug(operation+" failed", "error", err)
		return err
	}
	cred := s.store.Set(token)
	s.logger.Info("signed in", "operation", operation, "generation", cred.Generation)
	return nil
}

// Logout ends the session locally and then asks the endpoint to revoke
// it. A refresh in flight is superseded and its late result discarded.
// Remote failures are logged only.
func (s *Session) Logout(ctx context.Context) {
	cred := s.store.Get()
	s.scheduler.Cancel()
	s.store.Set(nil)
	s.logger.Info("signed out")
	if err := s.issuer.Logout(ctx, cred); err != nil {
		s.logger.Warn("remote logout failed", "error", err)
	}
}

// Start restores a session from the refresh credential, if any. Having
// no prior session is the ordinary unauthenticated outcome, not an error.
func (s *Session) Start(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)
	if _, err := s.RefreshSession(ctx); err != nil {
		if errors.Is(err, schema.ErrUnauthorized) {
			s.logger.Debug("no prior session", "error", err)
			return
		}
		s.logger.Warn("failed to restore session", "error", err)
	}
}

// Profile loads the signed-in user through the session HTTP client and
// records it in the state.
func (s *Session) Profile(ctx context.Context) (*schema.Profile, error) {
	profile, err := s.issuer.Profile(ctx, s.HTTPClient())
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	s.update(func(state *State) {
		if state.Authenticated {
			state.User = profile
		}
	})
	return profile, nil
}

// HTTPClient returns a client that authenticates requests with the
// session credential.
func (s *Session) HTTPClient() *http.Client {
	return &http.Client{Transport: s.interceptor, Jar: s.jar}
}

// State returns the current state snapshot
func (s *Session) State() State {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state
}

// Subscribe registers listener for state changes
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	s.notifyMux.Lock()
	defer s.notifyMux.Unlock()
	l := &listener{fn: fn}
	s.listeners = append(s.listeners, l)
	return func() {
		s.notifyMux.Lock()
		defer s.notifyMux.Unlock()
		for i, candidate := range s.listeners {
			if candidate == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close disarms the refresh timer and detaches from the store
func (s *Session) Close() {
	s.scheduler.Cancel()
	s.unsubscribe()
}

// onCommit runs under the store write lock for every credential change.
func (s *Session) onCommit(previous, current *credential.Credential) {
	ctx := context.Background()
	if current == nil {
		s.scheduler.Cancel()
		if err := s.marker.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear session marker", "error", err)
		}
		s.update(func(state *State) {
			*state = State{}
		})
		return
	}
	if err := s.marker.Mark(ctx, s.markerTTL); err != nil {
		s.logger.Warn("failed to persist session marker", "error", err)
	}
	s.scheduler.Arm(current)
	s.update(func(state *State) {
		user := current.User()
		if user == nil && state.Authenticated {
			user = state.User
		}
		*state = State{Credential: current, User: user, Authenticated: true}
	})
}

func (s *Session) setLoading(loading bool) {
	s.update(func(state *State) {
		state.Loading = loading
	})
}

func (s *Session) update(mutate func(state *State)) {
	s.notifyMux.Lock()
	defer s.notifyMux.Unlock()
	s.mux.Lock()
	mutate(&s.state)
	snapshot := s.state
	s.mux.Unlock()
	for _, l := range s.listeners {
		l.fn(snapshot)
	}
}

// New creates a session backed by issuer. The session starts
// unauthenticated; call Start to restore a prior session.
func New(issuer Issuer, options ...Option) *Session {
	ret := &Session{
		issuer:         issuer,
		store:          credential.NewStore(),
		marker:         marker.Nop(),
		markerTTL:      marker.DefaultTTL,
		transport:      http.DefaultTransport,
		clock:          clock.Real(),
		lead:           scheduler.DefaultLead,
		refreshTimeout: refresh.DefaultTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.coordinator = refresh.New(ret.store, issuer,
		refresh.WithTimeout(ret.refreshTimeout),
		refresh.WithLogger(ret.logger))
	ret.scheduler = scheduler.New(ret.coordinator.Trigger,
		scheduler.WithClock(ret.clock),
		scheduler.WithLead(ret.lead),
		scheduler.WithLogger(ret.logger))
	ret.interceptor = transport.New(ret,
		transport.WithTransport(ret.transport),
		transport.WithLogger(ret.logger))
	ret.unsubscribe = ret.store.Subscribe(ret.onCommit)
	return ret
}
