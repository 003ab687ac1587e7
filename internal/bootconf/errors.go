package bootconf

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when an entry identifier is empty.
	ErrEmptyID = errors.New("entry id is empty")

	// ErrInvalidID is returned when an entry identifier cannot be used as a file name.
	ErrInvalidID = errors.New("invalid entry id")

	// ErrInvalidValue is returned when a builder or setter receives a value
	// that could not be written back and parsed again.
	ErrInvalidValue = errors.New("invalid value")
)

// ValidationError reports a record field that violates an invariant.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
