package store

import (
	"errors"
	"fmt"
)

// Errors returned by the store.
var (
	// ErrTargetNotFound indicates the target path does not exist.
	ErrTargetNotFound = errors.New("target not found")

	// ErrIsDirectory indicates the target path is a directory.
	ErrIsDirectory = errors.New("target is a directory")

	// ErrBinaryTarget indicates the target appears to be binary.
	ErrBinaryTarget = errors.New("binary target")

	// ErrFileTooLarge indicates the target exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnencodable indicates the lines cannot be written in the
	// target's encoding.
	ErrUnencodable = errors.New("content not representable in target encoding")
)

// PathError records a failed store operation on a path.
type PathError struct {
	Op   string // Operation that failed (read, write, backup)
	Path string // File path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
