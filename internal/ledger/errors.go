package ledger

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ErrAmbiguousName is returned when a name lookup matches more than one
// record. The caller surfaces the ambiguity; the ledger never picks one
// arbitrarily.
var ErrAmbiguousName = errors.New("name matches multiple records")

// TransitionError reports a rejected order status change. Order status
// moves strictly unpaid -> paid -> completed, one step at a time.
type TransitionError struct {
	OrderID int64
	From    Status
	To      Status
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %d: invalid status transition %s -> %s", e.OrderID, e.From, e.To)
}

// IsTransitionError reports whether err is (or wraps) a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// mapScanErr converts sql.ErrNoRows to ErrNotFound.
func mapScanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
