package form

import (
	"errors"
	"fmt"
)

// ValidationError represents a recoverable per-field input failure.
//
// Validation errors never abort a form; the engine re-prompts the same
// field with the error attached. The Code identifies the failure category
// so the transport can render a localized message.
type ValidationError struct {
	// Code identifies the failure category.
	Code ValidationCode

	// Field is the key of the field that rejected the input.
	Field string

	// Message is a human-readable description.
	Message string
}

// ValidationCode categorizes validation failures.
type ValidationCode string

const (
	// CodeEmptyInput indicates a required text field received empty input.
	CodeEmptyInput ValidationCode = "EMPTY_INPUT"

	// CodeNotANumber indicates an amount field received unparsable input.
	CodeNotANumber ValidationCode = "NOT_A_NUMBER"

	// CodeNonPositive indicates an amount field received a value <= 0.
	CodeNonPositive ValidationCode = "NON_POSITIVE"

	// CodeBadDateFormat indicates a date field received input that does not
	// match the expected layout.
	CodeBadDateFormat ValidationCode = "BAD_DATE_FORMAT"

	// CodePastDate indicates a date field received a date strictly before
	// today while past dates are disallowed.
	CodePastDate ValidationCode = "PAST_DATE"

	// CodeNotFound indicates a reference field matched zero records.
	CodeNotFound ValidationCode = "NOT_FOUND"

	// CodeMultipleFound indicates a reference field matched more than one
	// record. Ambiguity is surfaced to the user rather than tie-broken.
	CodeMultipleFound ValidationCode = "MULTIPLE_FOUND"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidation unwraps err to a ValidationError, or nil if it isn't one.
func AsValidation(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func newValidationError(code ValidationCode, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}
