package mock

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Option configures the issuer
type Option func(s *Service)

// WithSecret sets the HS256 signing key
func WithSecret(secret []byte) Option {
	return func(s *Service) {
		s.secret = secret
	}
}

// WithAccessTTL sets the access token lifetime
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.accessTTL = ttl
	}
}

// WithRefreshTTL sets the refresh session lifetime
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.refreshTTL = ttl
	}
}

// WithRepository sets the refresh session repository
func WithRepository(repository Repository) Option {
	return func(s *Service) {
		s.repository = repository
	}
}

// WithNow sets the time source used for issuing and validating tokens
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHashCost sets the bcrypt cost
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// WithSecureCookies marks the refresh cookie Secure
func WithSecureCookies(secure bool) Option {
	return func(s *Service) {
		s.secure = secure
	}
}

// WithLoginRate limits register and login attempts per client IP
func WithLoginRate(limit rate.Limit, burst int) Option {
	return func(s *Service) {
		s.limit = limit
		s.burst = burst
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
