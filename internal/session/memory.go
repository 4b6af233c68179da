package session

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long an abandoned in-progress form is retained.
// Stale entries are dropped lazily on Get. Zero disables expiry.
const DefaultTTL = 24 * time.Hour

// MemoryStore is a mutex-guarded in-process Store. Suitable for a single
// bot process; use RedisStore when state must survive restarts.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
	ttl    time.Duration
	now    func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL overrides the retention window for abandoned forms.
// Zero disables expiry entirely.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// withClock overrides the time source (tests only).
func withClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store with DefaultTTL.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		states: make(map[string]*State),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the session's state, dropping it first if the
// entry has exceeded the TTL.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	if s.ttl > 0 && s.now().Sub(state.UpdatedAt) > s.ttl {
		delete(s.states, sessionID)
		return nil, ErrNotFound
	}

	return state.Clone(), nil
}

// Put stores a copy of the state keyed by its SessionID.
func (s *MemoryStore) Put(ctx context.Context, state *State) error {
	if state == nil || state.SessionID == "" {
		return ErrInvalidState
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state.Clone()
	return nil
}

// Clear removes the session's state if present.
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// Len returns the number of stored sessions. Used by tests to verify
// that completed forms don't leak state.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
