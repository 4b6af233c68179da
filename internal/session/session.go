// Package session provides per-conversation form progress storage.
//
// One State exists per session (chat/user); it records which form is in
// progress, the current step, and the values collected so far. States are
// JSON-serializable so backends can persist them across process restarts.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/vkarpenko/ledgerbot/internal/form"
)

// State is the per-session conversation state.
//
// Lifecycle: created when a form starts; Collected grows one key per
// completed step; the whole entry is cleared on commit, cancel, or
// back-out past the first field. Never shared across sessions.
type State struct {
	// SessionID identifies the conversation (one per chat/user).
	SessionID string `json:"session_id"`

	// Form is the registry name of the active form definition.
	Form string `json:"form"`

	// Step is the index of the field currently awaited.
	Step int `json:"step"`

	// Collected holds values for fields [0, Step).
	Collected form.Values `json:"collected"`

	// FormToken correlates every turn of one form instance in logs.
	FormToken string `json:"form_token"`

	// StartedAt is when the form was started.
	StartedAt time.Time `json:"started_at"`

	// UpdatedAt is bumped on every successful step.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers can't mutate stored state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.Collected = make(form.Values, len(s.Collected))
	for k, v := range s.Collected {
		out.Collected[k] = v
	}
	return &out
}

// Store is the keyed conversation state store.
//
// Implementations must make Get/Put/Clear safe for concurrent use across
// different session ids; the engine serializes calls for any single id.
type Store interface {
	// Get returns the state for the session, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*State, error)

	// Put stores (or replaces) the state for state.SessionID.
	Put(ctx context.Context, state *State) error

	// Clear removes the session's state. Clearing an absent session is
	// not an error.
	Clear(ctx context.Context, sessionID string) error
}

// ErrNotFound is returned by Get when the session has no stored state.
var ErrNotFound = errors.New("session state not found")

// ErrInvalidState is returned by Put for nil states or empty session ids.
var ErrInvalidState = errors.New("invalid session state")
