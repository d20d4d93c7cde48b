// Package errs defines the error taxonomy shared across layers.
//
// Services return these errors (or per-package sentinels wrapping them) and
// the HTTP layer maps them to status codes without inspecting error strings.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// NotFound returns an error for a missing entity that matches ErrNotFound
// under errors.Is.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// ValidationError reports malformed or constraint-violating input. Field
// identifies the offending request field so the caller can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Validation builds a ValidationError for the given field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StorageError wraps a failure from the persistence layer. It is propagated
// unchanged to the caller; retry policy belongs to the calling layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError, annotated with the failing operation.
func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err originated in the persistence layer.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
