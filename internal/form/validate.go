package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate maps one raw user input to a typed Value for the field, or a
// *ValidationError describing why the input was rejected.
//
// Validation is pure except for reference resolution, which reads through
// the field's Resolve hook. The skip token is checked here (after the
// engine has already consumed cancel and back tokens for the turn).
//
// now supplies "today" for past-date checks; callers outside tests pass
// time.Now().
func (f *FieldSpec) Validate(ctx context.Context, raw, skipToken string, now time.Time) (Value, error) {
	trimmed := strings.TrimSpace(raw)

	if f.Skippable && skipToken != "" && strings.EqualFold(trimmed, skipToken) {
		return TextValue(""), nil
	}

	switch f.Kind {
	case KindText:
		if f.Required && trimmed == "" {
			return Value{}, newValidationError(CodeEmptyInput, f.Key, "input must not be empty")
		}
		return TextValue(trimmed), nil

	case KindAmount:
		amount, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, newValidationError(CodeNotANumber, f.Key, fmt.Sprintf("%q is not a number", trimmed))
		}
		if amount <= 0 {
			return Value{}, newValidationError(CodeNonPositive, f.Key, fmt.Sprintf("amount must be positive, got %v", amount))
		}
		return AmountValue(amount), nil

	case KindDate:
		date, err := time.ParseInLocation(DateLayout, trimmed, now.Location())
		if err != nil {
			return Value{}, newValidationError(CodeBadDateFormat, f.Key, fmt.Sprintf("%q does not match %s", trimmed, "dd.mm.yyyy"))
		}
		if !f.AllowPast {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			if date.Before(today) {
				return Value{}, newValidationError(CodePastDate, f.Key, fmt.Sprintf("%s is in the past", trimmed))
			}
		}
		return DateValue(date), nil

	case KindReference:
		if f.Resolve == nil {
			return Value{}, fmt.Errorf("field %s: reference field has no resolver", f.Key)
		}
		id, err := f.Resolve(ctx, trimmed)
		if err != nil {
			return Value{}, err
		}
		return RefValue(id), nil

	default:
		return Value{}, fmt.Errorf("field %s: unknown kind %d", f.Key, f.Kind)
	}
}
