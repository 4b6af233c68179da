package engine

import "github.com/vkarpenko/ledgerbot/internal/form"

// ResultKind distinguishes the outcomes of one conversation turn.
type ResultKind int

const (
	// ResultPrompt asks the user for a field (first prompt, next prompt,
	// or a re-prompt carrying a validation error).
	ResultPrompt ResultKind = iota + 1

	// ResultCommitted reports a successfully persisted record.
	ResultCommitted

	// ResultCommitFailed reports a failed commit. Form state is already
	// cleared; the form is not retried.
	ResultCommitFailed

	// ResultCancelled reports that the user aborted the form.
	ResultCancelled

	// ResultBackToParent reports that the user backed out of the first
	// field; the caller should show the parent menu.
	ResultBackToParent
)

// Prompt carries everything the transport needs to render a field
// request.
type Prompt struct {
	// Form is the active form's registry name.
	Form string

	// Field is the key of the awaited field.
	Field string

	// Text is the field's prompt.
	Text string

	// Err is the validation failure from the previous attempt, nil on a
	// first prompt.
	Err *form.ValidationError

	// Choices are optional suggested inputs (rendered as a keyboard).
	Choices []string

	// CanBack reports whether the back token is honored at this field.
	CanBack bool

	// CanSkip reports whether the skip token is honored at this field.
	CanSkip bool
}

// Result is the outcome of StartForm or HandleInput. Exactly the fields
// relevant to Kind are populated.
type Result struct {
	Kind ResultKind

	// Prompt is set for ResultPrompt.
	Prompt *Prompt

	// Form is the form name, set for all kinds.
	Form string

	// RecordID is set for ResultCommitted.
	RecordID int64

	// CommitErr is set for ResultCommitFailed.
	CommitErr error
}
