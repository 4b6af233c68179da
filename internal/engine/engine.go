// Package engine drives stepped-form conversations: one field per user
// turn, with validation, back/cancel unwinding, and a final commit.
//
// The engine is the only writer of session state. Per-session access is
// serialized with a keyed lock; distinct sessions proceed concurrently
// and share no mutable state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vkarpenko/ledgerbot/internal/form"
	"github.com/vkarpenko/ledgerbot/internal/session"
)

// ErrNoActiveForm is returned by HandleInput when the session has no
// form in progress. The caller routes such input to its menu dispatch.
var ErrNoActiveForm = errors.New("no active form for session")

// Tokens are the reserved inputs recognized at every step, checked
// before the field validator: cancel first, then back. The skip token is
// consulted by skippable fields during validation.
//
// INVARIANT: the three tokens are pairwise distinct and non-empty for
// cancel and back (enforced by NewEngine).
type Tokens struct {
	Cancel string
	Back   string
	Skip   string
}

// Engine is the stepped-input state machine.
//
// States per session: Idle (no stored state), AwaitingField(i) for
// i in [0, n), and the transient Committing while the last field's
// commit callback runs. Transitions:
//
//	Idle            -> AwaitingField(0)    StartForm
//	AwaitingField(i)-> AwaitingField(i)    validation failure (re-prompt)
//	AwaitingField(i)-> AwaitingField(i+1)  validation success, i+1 < n
//	AwaitingField(i)-> AwaitingField(i-1)  back token, AllowBack, i > 0
//	AwaitingField(0)-> Idle                back token, AllowBack (BackToParent)
//	AwaitingField(n-1) -> Committing -> Idle  last field success
//	any             -> Idle                cancel token
//
// State is cleared on commit (success or failure), cancel, and back-out;
// a failed commit is never retried within the same form instance.
type Engine struct {
	registry *form.Registry
	sessions session.Store
	locks    *sessionLocks
	tokens   Tokens
	tokenGen FormTokenGenerator
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenGenerator overrides the form token generator (tests).
func WithTokenGenerator(gen FormTokenGenerator) Option {
	return func(e *Engine) {
		e.tokenGen = gen
	}
}

// WithClock overrides the time source used for date validation and
// state timestamps (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over the given form registry and session
// store. The cancel and back tokens must be distinct by construction.
func NewEngine(registry *form.Registry, sessions session.Store, tokens Tokens, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("engine: session store is required")
	}
	if tokens.Cancel == "" || tokens.Back == "" {
		return nil, fmt.Errorf("engine: cancel and back tokens are required")
	}
	if tokens.Cancel == tokens.Back || tokens.Cancel == tokens.Skip || tokens.Back == tokens.Skip {
		return nil, fmt.Errorf("engine: reserved tokens must be pairwise distinct")
	}

	e := &Engine{
		registry: registry,
		sessions: sessions,
		locks:    newSessionLocks(),
		tokens:   tokens,
		tokenGen: UUIDv7Generator{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StartForm begins the named form for the session and returns the first
// field's prompt. Any form already in progress for the session is
// discarded.
func (e *Engine) StartForm(ctx context.Context, sessionID, formName string) (Result, error) {
	def, ok := e.registry.Lookup(formName)
	if !ok {
		return Result{}, fmt.Errorf("start form: unknown form %q", formName)
	}

	release := e.locks.acquire(sessionID)
	defer release()

	now := e.now()
	state := &session.State{
		SessionID: sessionID,
		Form:      def.Name(),
		Step:      0,
		Collected: make(form.Values),
		FormToken: e.tokenGen.Generate(),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("start form: store state: %w", err)
	}

	slog.Info("form started",
		"session", sessionID,
		"form", def.Name(),
		"form_token", state.FormToken,
	)

	return e.promptResult(ctx, def, state, nil), nil
}

// HandleInput processes one user turn for the session.
//
// Returns ErrNoActiveForm when the session is Idle; all other outcomes
// (including commit failures) are reported through the Result so the
// conversation always resolves to a user-visible message.
func (e *Engine) HandleInput(ctx context.Context, sessionID, raw string) (Result, error) {
	release := e.locks.acquire(sessionID)
	defer release()

	state, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{}, ErrNoActiveForm
		}
		return Result{}, fmt.Errorf("handle input: load state: %w", err)
	}

	def, ok := e.registry.Lookup(state.Form)
	if !ok {
		// Stored state references a form this build no longer registers.
		// Clear it and hand control back to the menu.
		if clearErr := e.sessions.Clear(ctx, sessionID); clearErr != nil {
			return Result{}, fmt.Errorf("handle input: clear orphaned state: %w", clearErr)
		}
		return Result{}, ErrNoActiveForm
	}
	if state.Step < 0 || state.Step >= def.Len() {
		// Stored state points past the end of the form this build
		// registers (the definition shrank). Same treatment as an
		// unknown form: clear and hand control back to the menu.
		if clearErr := e.sessions.Clear(ctx, sessionID); clearErr != nil {
			return Result{}, fmt.Errorf("handle input: clear orphaned state: %w", clearErr)
		}
		return Result{}, ErrNoActiveForm
	}

	// Reserved tokens bypass the field validator: cancel first, then back.
	if raw == e.tokens.Cancel {
		return e.cancel(ctx, def, state)
	}
	if raw == e.tokens.Back && def.Field(state.Step).AllowBack {
		return e.back(ctx, def, state)
	}

	field := def.Field(state.Step)
	value, err := field.Validate(ctx, raw, e.tokens.Skip, e.now())
	if err != nil {
		ve := form.AsValidation(err)
		if ve == nil {
			// Adapter failure during reference resolution. Surface as a
			// recoverable lookup failure and re-prompt rather than killing
			// the conversation.
			slog.Error("reference lookup failed",
				"session", sessionID,
				"form", def.Name(),
				"form_token", state.FormToken,
				"field", field.Key,
				"error", err,
			)
			ve = &form.ValidationError{
				Code:    form.CodeNotFound,
				Field:   field.Key,
				Message: "lookup failed, try again",
			}
		}
		slog.Debug("input rejected",
			"session", sessionID,
			"form", def.Name(),
			"field", field.Key,
			"code", ve.Code,
		)
		return e.promptResult(ctx, def, state, ve), nil
	}

	state.Collected[field.Key] = value
	state.UpdatedAt = e.now()

	if state.Step+1 < def.Len() {
		state.Step++
		if err := e.sessions.Put(ctx, state); err != nil {
			return Result{}, fmt.Errorf("handle input: store state: %w", err)
		}
		return e.promptResult(ctx, def, state, nil), nil
	}

	return e.commit(ctx, def, state)
}

// CurrentState returns a read-only snapshot of the session's state for
// diagnostics, or session.ErrNotFound when Idle. Calling it repeatedly
// without an intervening HandleInput returns identical snapshots.
func (e *Engine) CurrentState(ctx context.Context, sessionID string) (*session.State, error) {
	release := e.locks.acquire(sessionID)
	defer release()
	return e.sessions.Get(ctx, sessionID)
}

// cancel aborts the form regardless of the current field.
func (e *Engine) cancel(ctx context.Context, def *form.Definition, state *session.State) (Result, error) {
	if err := e.sessions.Clear(ctx, state.SessionID); err != nil {
		return Result{}, fmt.Errorf("cancel: clear state: %w", err)
	}
	slog.Info("form cancelled",
		"session", state.SessionID,
		"form", def.Name(),
		"form_token", state.FormToken,
		"step", state.Step,
	)
	return Result{Kind: ResultCancelled, Form: def.Name()}, nil
}

// back unwinds one step, or out to the parent menu from the first field.
// Previously collected values for earlier fields are retained; answering
// the re-prompted field overwrites its old value.
func (e *Engine) back(ctx context.Context, def *form.Definition, state *session.State) (Result, error) {
	if state.Step == 0 {
		if err := e.sessions.Clear(ctx, state.SessionID); err != nil {
			return Result{}, fmt.Errorf("back: clear state: %w", err)
		}
		return Result{Kind: ResultBackToParent, Form: def.Name()}, nil
	}

	state.Step--
	state.UpdatedAt = e.now()
	if err := e.sessions.Put(ctx, state); err != nil {
		return Result{}, fmt.Errorf("back: store state: %w", err)
	}
	return e.promptResult(ctx, def, state, nil), nil
}

// commit invokes the form's commit callback with the collected values.
// State is cleared on both success and failure; a CommitError is
// reported to the caller, never retried.
func (e *Engine) commit(ctx context.Context, def *form.Definition, state *session.State) (Result, error) {
	if err := e.sessions.Clear(ctx, state.SessionID); err != nil {
		return Result{}, fmt.Errorf("commit: clear state: %w", err)
	}

	recordID, err := def.Commit(ctx, state.Collected)
	if err != nil {
		slog.Error("commit failed",
			"session", state.SessionID,
			"form", def.Name(),
			"form_token", state.FormToken,
			"error", err,
		)
		return Result{Kind: ResultCommitFailed, Form: def.Name(), CommitErr: err}, nil
	}

	slog.Info("record committed",
		"session", state.SessionID,
		"form", def.Name(),
		"form_token", state.FormToken,
		"record_id", recordID,
	)
	return Result{Kind: ResultCommitted, Form: def.Name(), RecordID: recordID}, nil
}

// promptResult builds the prompt for the session's current field.
func (e *Engine) promptResult(ctx context.Context, def *form.Definition, state *session.State, ve *form.ValidationError) Result {
	field := def.Field(state.Step)
	prompt := &Prompt{
		Form:    def.Name(),
		Field:   field.Key,
		Text:    field.Prompt,
		Err:     ve,
		CanBack: field.AllowBack,
		CanSkip: field.Skippable,
	}
	if field.Suggest != nil {
		prompt.Choices = field.Suggest(ctx)
	}
	return Result{Kind: ResultPrompt, Form: def.Name(), Prompt: prompt}
}
