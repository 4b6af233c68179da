package engine

import "sync"

// sessionLocks provides mutual exclusion per session id.
//
// Operations on one session's state must be serialized, while distinct
// sessions proceed independently and concurrently. Lock entries are
// reference-counted and removed once the last holder releases, so the
// map does not grow with the number of sessions ever seen.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

// acquire blocks until the session's lock is held and returns the
// release function. The release function must be called exactly once.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// held returns the number of sessions with live lock entries.
// Used by tests to verify entries are reclaimed.
func (l *sessionLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
