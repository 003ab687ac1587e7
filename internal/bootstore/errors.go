package bootstore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entry id is not in the store.
	ErrNotFound = errors.New("entry not found")

	// ErrDuplicateID is returned when an entry id is already in the store.
	ErrDuplicateID = errors.New("duplicate entry id")

	// ErrNotDirectory is returned when the root path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// IOError wraps a failure from the filesystem.
type IOError struct {
	Op   string // "read", "write", "rename", "remove", "mkdir", "stat", "readdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
