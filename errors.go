package recgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/store"
)

var (
	// ErrNotFound is returned when no record exists for the given id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a freshly generated id collides with
	// an existing record.
	ErrAlreadyExists = errors.New("already exists")
)

// CorruptRecordError indicates a record file whose content cannot be decoded.
//
// The original underlying error can be accessed via errors.Unwrap.
type CorruptRecordError struct {
	Path  string
	cause error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record: %s", e.Path)
}

func (e *CorruptRecordError) Unwrap() error { return e.cause }

// CorruptIndexError indicates an index partition whose content cannot be
// decoded. Queries repair this automatically with one rebuild and retry; the
// error only surfaces if the rebuilt index fails again.
//
// The original underlying error can be accessed via errors.Unwrap.
type CorruptIndexError struct {
	Index string
	Path  string
	cause error
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt index %s: %s", e.Index, e.Path)
}

func (e *CorruptIndexError) Unwrap() error { return e.cause }

// StorageError indicates an I/O failure (permission, disk full, rename
// failure). It is never retried or masked internally: before-state on disk is
// preserved, so the caller may safely retry the operation.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageError struct {
	Op    string
	Path  string
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %s %s", e.Op, e.Path)
}

func (e *StorageError) Unwrap() error { return e.cause }

// ValidationError indicates that a payload was rejected by the configured
// validation collaborator before any state changed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ValidationError struct {
	Entity string
	cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Entity, e.cause)
}

func (e *ValidationError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found / duplicate unification.
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}

	// Decode failures.
	var cr *store.CorruptRecordError
	if errors.As(err, &cr) {
		return &CorruptRecordError{Path: cr.Path, cause: err}
	}
	var ci *index.CorruptIndexError
	if errors.As(err, &ci) {
		return &CorruptIndexError{Index: ci.Index, Path: ci.Path, cause: err}
	}

	// I/O failures.
	var ss *store.StorageError
	if errors.As(err, &ss) {
		return &StorageError{Op: ss.Op, Path: ss.Path, cause: err}
	}
	var is *index.StorageError
	if errors.As(err, &is) {
		return &StorageError{Op: is.Op, Path: is.Path, cause: err}
	}

	return err
}
