package credential

import (
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"
)

// Observer is notified after every commit with the replaced and the new
// credential (either may be nil).
type Observer func(previous, current *Credential)

// Store holds the current credential. Reads are lock free; writes are
// serialized and notify observers, in commit order, before returning.
type Store struct {
	current    atomic.Pointer[Credential]
	generation atomic.Uint64
	mux        sync.Mutex
	observers  []*subscription
}

type subscription struct {
	observer Observer
}

// Get returns the current credential or nil
func (s *Store) Get() *Credential {
	return s.current.Load()
}

// Generation returns the generation of the last commit
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// Set replaces the credential; a nil token clears it. Every call starts
// a new generation.
func (s *Store) Set(token *oauth2.Token) *Credential {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.commit(token)
}

// SetIf replaces the credential only when no commit happened since
// generation. It reports whether the write was applied.
func (s *Store) SetIf(generation uint64, token *oauth2.Token) (*Credential, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.generation.Load() != generation {
		return nil, false
	}
	return s.commit(token), true
}

// Subscribe registers an observer. Observers run while the store write
// lock is held and must not call Set or SetIf.
func (s *Store) Subscribe(observer Observer) (cancel func()) {
	s.mux.Lock()
	defer s.mux.Unlock()
	sub := &subscription{observer: observer}
	s.observers = append(s.observers, sub)
	return func() {
		s.mux.Lock()
		defer s.mux.Unlock()
		for i, candidate := range s.observers {
			if candidate == sub {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) commit(token *oauth2.Token) *Credential {
	generation := s.generation.Add(1)
	var next *Credential
	if token != nil {
		next = &Credential{Token: token, Generation: generation}
	}
	previous := s.current.Swap(next)
	for _, sub := range s.observers {
		sub.observer(previous, next)
	}
	return next
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}
