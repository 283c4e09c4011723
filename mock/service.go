package mock

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/viant/authsession/internal/collection"
	"github.com/viant/authsession/metrics"
	"github.com/viant/authsession/schema"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	// RefreshCookie names the http-only refresh credential cookie.
	RefreshCookie = "refreshToken"
	// RefreshCookiePath scopes the refresh cookie to the auth routes.
	RefreshCookiePath = "/api/auth"

	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	errInvalidCredentials = schema.NewError(schema.ErrUnauthorized, http.StatusUnauthorized, "Invalid credentials")
	errEmailTaken         = schema.NewError(schema.ErrRejected, http.StatusConflict, "Email already registered")
	errFormIncomplete     = schema.NewError(schema.ErrRejected, http.StatusBadRequest, "Email and password are required")
	errRefreshMissing     = schema.NewError(schema.ErrUnauthorized, http.StatusUnauthorized, "Refresh token missing")
	errRefreshInvalid     = schema.NewError(schema.ErrUnauthorized, http.StatusUnauthorized, "Invalid refresh token")
	errRefreshReused      = schema.NewError(schema.ErrUnauthorized, http.StatusUnauthorized, "Refresh token reuse detected")
	errAccessInvalid      = schema.NewError(schema.ErrUnauthorized, http.StatusUnauthorized, "Invalid or expired access token")
)

type user struct {
	ID      string
	Profile schema.Profile
	Hash    []byte
}

// Service is a reference credential issuer: it registers users, issues
// short-lived HS256 access tokens and rotates refresh cookies with reuse
// detection.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	secure     bool
	now        func() time.Time
	logger     *slog.Logger

	users      *collection.SyncMap[string, *user]
	subjects   *collection.SyncMap[string, *user]
	repository Repository

	limit    rate.Limit
	burst    int
	limiters *collection.SyncMap[string, *rate.Limiter]

	version      atomic.Int64
	refreshCalls atomic.Int64
	failRefresh  atomic.Bool
	refreshDelay atomic.Int64
	registerMux  sync.Mutex
}

// RefreshCalls returns how many refresh requests reached the issuer
func (s *Service) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// ExpireAccessTokens invalidates every access token issued so far
func (s *Service) ExpireAccessTokens() {
	s.version.Add(1)
}

// FailRefresh makes subsequent refresh calls answer 401
func (s *Service) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// SetRefreshDelay delays refresh responses, widening the in-flight window
func (s *Service) SetRefreshDelay(delay time.Duration) {
	s.refreshDelay.Store(int64(delay))
}

// Register creates a user and a refresh session
func (s *Service) Register(ctx context.Context, form *schema.RegisterForm) (*schema.AuthData, string, error) {
	if form.Email == "" || form.Password == "" {
		return nil, "", errFormIncomplete
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	candidate := &user{
		ID:      uuid.NewString(),
		Profile: schema.Profile{Email: form.Email, FirstName: form.FirstName, LastName: form.LastName, IsActive: true},
		Hash:    hash,
	}
	s.registerMux.Lock()
	if _, exists := s.users.Get(form.Email); exists {
		s.registerMux.Unlock()
		return nil, "", errEmailTaken
	}
	s.users.Put(form.Email, candidate)
	s.subjects.Put(candidate.ID, candidate)
	s.registerMux.Unlock()
	return s.issue(ctx, candidate, "register", uuid.NewString())
}

// Login verifies the password and starts a new refresh family
func (s *Service) Login(ctx context.Context, form *schema.LoginForm) (*schema.AuthData, string, error) {
	candidate, ok := s.users.Get(form.Email)
	if !ok {
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(candidate.Hash, []byte(form.Password)); err != nil {
		return nil, "", errInvalidCredentials
	}
	return s.issue(ctx, candidate, "login", uuid.NewString())
}

// Refresh rotates refreshID and issues a new access token. A refresh
// credential presented twice revokes its family.
func (s *Service) Refresh(ctx context.Context, refreshID string) (*schema.AuthData, string, error) {
	s.refreshCalls.Add(1)
	if delay := time.Duration(s.refreshDelay.Load()); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}
	if refreshID == "" {
		return nil, "", errRefreshMissing
	}
	if s.failRefresh.Load() {
		return nil, "", errRefreshInvalid
	}
	session, err := s.repository.Get(ctx, refreshID)
	if err != nil {
		return nil, "", err
	}
	if session == nil || session.Expired(s.now()) {
		return nil, "", errRefreshInvalid
	}
	candidate, ok := s.subjects.Get(session.Subject)
	if !ok {
		return nil, "", errRefreshInvalid
	}
	next := s.newSession(candidate.ID, session.Family)
	rotated, err := s.repository.Rotate(ctx, refreshID, next)
	if err != nil {
		return nil, "", err
	}
	if !rotated {
		s.logger.Warn("refresh token reuse detected, revoking family", "family", session.Family)
		if err = s.repository.RevokeFamily(ctx, session.Family); err != nil {
			return nil, "", err
		}
		return nil, "", errRefreshReused
	}
	data, err := s.authData(candidate, "refresh")
	if err != nil {
		return nil, "", err
	}
	return data, next.ID, nil
}

// Logout revokes the family of refreshID, if any
func (s *Service) Logout(ctx context.Context, refreshID string) error {
	if refreshID == "" {
		return nil
	}
	session, err := s.repository.Get(ctx, refreshID)
	if err != nil || session == nil {
		return err
	}
	return s.repository.RevokeFamily(ctx, session.Family)
}

func (s *Service) issue(ctx context.Context, candidate *user, grant, family string) (*schema.AuthData, string, error) {
	session := s.newSession(candidate.ID, family)
	if err := s.repository.Create(ctx, session); err != nil {
		return nil, "", err
	}
	data, err := s.authData(candidate, grant)
	if err != nil {
		return nil, "", err
	}
	return data, session.ID, nil
}

func (s *Service) authData(candidate *user, grant string) (*schema.AuthData, error) {
	accessToken, err := s.createAccessToken(candidate)
	if err != nil {
		return nil, err
	}
	metrics.IssuedTokens.WithLabelValues(grant).Inc()
	profile := candidate.Profile
	return &schema.AuthData{AccessToken: accessToken, User: &profile}, nil
}

func (s *Service) newSession(subject, family string) *RefreshSession {
	now := s.now()
	return &RefreshSession{
		ID:        uuid.NewString(),
		Family:    family,
		Subject:   subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
}

// New creates an issuer. Without WithSecret a random signing key is used.
func New(options ...Option) *Service {
	ret := &Service{
		secret:     []byte(uuid.NewString()),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		logger:     slog.Default(),
		users:      collection.NewSyncMap[string, *user](),
		subjects:   collection.NewSyncMap[string, *user](),
		limit:      rate.Limit(10),
		burst:      20,
		limiters:   collection.NewSyncMap[string, *rate.Limiter](),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.repository == nil {
		ret.repository = NewMemoryRepository()
	}
	return ret
}
