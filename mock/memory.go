package mock

import (
	"context"
	"sync"

	"github.com/viant/authsession/internal/collection"
)

// MemoryRepository keeps refresh sessions in process memory
type MemoryRepository struct {
	sessions *collection.SyncMap[string, *RefreshSession]
	mux      sync.Mutex
}

func (r *MemoryRepository) Create(ctx context.Context, session *RefreshSession) error {
	clone := *session
	r.sessions.Put(session.ID, &clone)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*RefreshSession, error) {
	session, ok := r.sessions.Get(id)
	if !ok {
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

func (r *MemoryRepository) Rotate(ctx context.Context, id string, next *RefreshSession) (bool, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	current, ok := r.sessions.Get(id)
	if !ok || current.Rotated {
		return false, nil
	}
	rotated := *current
	rotated.Rotated = true
	r.sessions.Put(id, &rotated)
	return true, r.Create(ctx, next)
}

func (r *MemoryRepository) RevokeFamily(ctx context.Context, family string) error {
	r.sessions.Range(func(id string, session *RefreshSession) bool {
		if session.Family == family {
			r.sessions.Delete(id)
		}
		return true
	})
	return nil
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: collection.NewSyncMap[string, *RefreshSession]()}
}
