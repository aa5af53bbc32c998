package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSearchUnavailable signals that a search or membership backend call failed.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrInvalidArgument signals a caller contract violation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedRow signals a result row that cannot be decoded.
	ErrMalformedRow = errors.New("malformed row")
)

// MalformedRowError wraps ErrMalformedRow with the offending row position and field.
type MalformedRowError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: row %d field %q: %s", ErrMalformedRow.Error(), e.Index, e.Field, e.Reason)
}

func (e *MalformedRowError) Unwrap() error { return ErrMalformedRow }

// NewMalformedRow creates a malformed row error.
func NewMalformedRow(index int, field, reason string) error {
	return &MalformedRowError{Index: index, Field: field, Reason: reason}
}

// BackendFailure wraps a failed backend call as ErrSearchUnavailable.
// Calls the adapter refused to send keep their ErrInvalidArgument instead.
func BackendFailure(op string, err error) error {
	if errors.Is(err, ErrInvalidArgument) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSearchUnavailable, op, err)
}
