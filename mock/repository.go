package mock

import (
	"context"
	"time"
)

// RefreshSession is a single refresh credential. Rotation replaces it with
// a successor in the same family; presenting a rotated credential again
// revokes the whole family.
type RefreshSession struct {
	ID        string    `json:"id"`
	Family    string    `json:"family"`
	Subject   string    `json:"subject"`
	Rotated   bool      `json:"rotated"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now
func (s *RefreshSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Repository stores refresh sessions
type Repository interface {
	// Create stores a new session
	Create(ctx context.Context, session *RefreshSession) error
	// Get returns the session or nil when unknown
	Get(ctx context.Context, id string) (*RefreshSession, error)
	// Rotate marks id as rotated and stores next, atomically. It returns
	// false when id was already rotated.
	Rotate(ctx context.Context, id string, next *RefreshSession) (bool, error)
	// RevokeFamily deletes every session of family
	RevokeFamily(ctx context.Context, family string) error
}
