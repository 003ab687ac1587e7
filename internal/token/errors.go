package token

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValue is returned when a known directive has no value.
	ErrMissingValue = errors.New("missing value")

	// ErrInvalidValue is returned when a value does not convert to the
	// directive's type or is outside its allowed set.
	ErrInvalidValue = errors.New("invalid value")
)

// ParseError reports a line that could not be converted into a Token.
type ParseError struct {
	File string // set by callers that know the file; empty otherwise
	Line int    // 1-based
	Text string // the offending line, trimmed
	Err  error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v (line %q)", e.File, e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %v (line %q)", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }
