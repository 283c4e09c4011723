package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/viant/authsession/internal/clock"
	"github.com/viant/authsession/marker"
)

// Option configures a session
type Option func(s *Session)

// WithMarker sets where the "authenticated" hint is persisted
func WithMarker(m marker.Marker) Option {
	return func(s *Session) {
		s.marker = m
	}
}

// WithMarkerTTL sets the marker lifetime
func WithMarkerTTL(ttl time.Duration) Option {
	return func(s *Session) {
		s.markerTTL = ttl
	}
}

// WithLead sets how long before expiry the credential is renewed
func WithLead(lead time.Duration) Option {
	return func(s *Session) {
		s.lead = lead
	}
}

// WithRefreshTimeout bounds a single remote refresh
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.refreshTimeout = timeout
	}
}

// WithClock sets the clock driving proactive renewal
func WithClock(c clock.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithTransport sets the round tripper wrapped by the session HTTP client
func WithTransport(transport http.RoundTripper) Option {
	return func(s *Session) {
		s.transport = transport
	}
}

// WithJar sets the cookie jar of the session HTTP client
func WithJar(jar http.CookieJar) Option {
	return func(s *Session) {
		s.jar = jar
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}
