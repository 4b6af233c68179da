// Package form defines declarative stepped-form definitions: an ordered
// sequence of typed fields collected one user turn at a time, with
// per-field validation and a commit callback invoked once every field
// has been collected.
package form

import (
	"context"
	"time"
)

// Kind identifies a field's value type. Field kinds are a closed tagged
// variant; validation dispatches on Kind rather than on a type hierarchy.
type Kind int

const (
	// KindText accepts free text (trimmed). A required text field rejects
	// empty input; a skippable one accepts its skip token and yields "".
	KindText Kind = iota + 1

	// KindAmount accepts a positive decimal amount.
	KindAmount

	// KindDate accepts a calendar date in the DateLayout format.
	KindDate

	// KindReference accepts an existing record, identified by exact name
	// or numeric id, resolved through the field's Resolve hook.
	KindReference
)

// DateLayout is the single accepted date input format (dd.mm.yyyy).
const DateLayout = "02.01.2006"

// Resolver resolves a reference field's raw input to a record id.
// Implementations look records up by exact name or numeric id and return
// a ValidationError (CodeNotFound, CodeMultipleFound) on failure.
type Resolver func(ctx context.Context, raw string) (int64, error)

// FieldSpec describes one field of a form. Immutable once the containing
// Definition is built.
type FieldSpec struct {
	// Key uniquely identifies the field within its form.
	Key string

	// Prompt is the text shown when the engine requests this field.
	Prompt string

	// Kind selects the validator.
	Kind Kind

	// Required rejects empty input for text fields.
	Required bool

	// Skippable allows the skip token; the collected value is the empty
	// string. Only meaningful for text fields.
	Skippable bool

	// AllowBack permits the back token at this step.
	AllowBack bool

	// AllowPast permits dates strictly before today. Only meaningful for
	// date fields.
	AllowPast bool

	// Resolve is the reference lookup. Required for KindReference.
	Resolve Resolver

	// Suggest optionally produces choice strings the transport may render
	// as a keyboard (client names, upcoming dates). Suggestions are hints;
	// any input passing the validator is accepted.
	Suggest func(ctx context.Context) []string
}

// Value is the typed result of validating one field's input.
// Exactly the slot matching Kind is populated.
type Value struct {
	Kind   Kind      `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Amount float64   `json:"amount,omitempty"`
	Date   time.Time `json:"date,omitempty"`
	Ref    int64     `json:"ref,omitempty"`
}

// TextValue builds a text Value.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// AmountValue builds an amount Value.
func AmountValue(a float64) Value { return Value{Kind: KindAmount, Amount: a} }

// DateValue builds a date Value.
func DateValue(d time.Time) Value { return Value{Kind: KindDate, Date: d} }

// RefValue builds a reference Value.
func RefValue(id int64) Value { return Value{Kind: KindReference, Ref: id} }

// Values is the collected key -> Value mapping handed to Commit.
type Values map[string]Value
