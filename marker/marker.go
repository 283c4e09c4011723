package marker

import (
	"context"
	"time"
)

const (
	// DefaultName is the marker cookie name read by the route guard.
	DefaultName = "authenticated"
	// DefaultTTL bounds how long a marker outlives the last refresh.
	DefaultTTL = 15 * time.Minute
)

// Marker persists a non-secret hint that a session probably exists, so
// that a route guard can decide without asking the credential issuer.
type Marker interface {
	// Mark records the hint for ttl.
	Mark(ctx context.Context, ttl time.Duration) error
	// Clear removes the hint.
	Clear(ctx context.Context) error
	// Present reports whether an unexpired hint exists.
	Present(ctx context.Context) (bool, error)
}

type nop struct{}

func (nop) Mark(context.Context, time.Duration) error { return nil }
func (nop) Clear(context.Context) error                { return nil }
func (nop) Present(context.Context) (bool, error)      { return false, nil }

// Nop returns a marker that records nothing
func Nop() Marker {
	return nop{}
}
