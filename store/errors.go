package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when a freshly generated id collides with
	// an existing record file. With a uuid generator this should not occur,
	// but it is guarded rather than silently overwritten.
	ErrAlreadyExists = errors.New("record already exists")
)

// CorruptRecordError indicates a record file whose content cannot be decoded.
//
// The underlying decode error can be accessed via errors.Unwrap.
type CorruptRecordError struct {
	Path  string
	cause error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.Path, e.cause)
}

func (e *CorruptRecordError) Unwrap() error { return e.cause }

// StorageError indicates an I/O failure (permission, disk full, rename
// failure). It is never retried internally; the pre-write state of the
// record file is preserved, so callers may safely retry.
type StorageError struct {
	Op    string
	Path  string
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }
