package types

import (
	"errors"
	"fmt"
)

// Record store errors. Callers inspect them with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrCorruptData     = errors.New("corrupt data")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotFound        = errors.New("record not found")
	ErrPersistence     = errors.New("persistence failed")
)

// Entity model errors.
var (
	ErrUnknownKind  = errors.New("unknown worker type")
	ErrUnknownField = errors.New("unknown field")
	ErrReadOnly     = errors.New("field is read-only")
)

// ErrStorageAbsent is returned by Storage.Load when nothing has been stored
// yet. It is not a failure: the store starts with empty categories.
var ErrStorageAbsent = errors.New("storage absent")

// ValidationWarning reports a rejected field assignment. The field keeps its
// previous value; the enclosing operation continues.
type ValidationWarning struct {
	Field  string // field label, e.g. "Salary"
	Value  string // offending value as text
	Reason string
	Err    error // optional cause, e.g. ErrUnknownField
}

// Error renders the field, the rejected value and the reason.
func (w *ValidationWarning) Error() string {
	if w.Value == "" {
		return fmt.Sprintf("%s: %s", w.Field, w.Reason)
	}
	return fmt.Sprintf("%s %q: %s", w.Field, w.Value, w.Reason)
}

// Unwrap lets errors.Is match ErrValidation and the cause, if any.
func (w *ValidationWarning) Unwrap() []error {
	if w.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, w.Err}
}

// CorruptDataWarning reports a storage source that could not be decoded.
// The store resets to empty categories and keeps running.
type CorruptDataWarning struct {
	Source string
	Err    error
}

// Error names the source and the decoding failure.
func (w *CorruptDataWarning) Error() string {
	return fmt.Sprintf("corrupt data in %s: %v", w.Source, w.Err)
}

// Is matches ErrCorruptData.
func (w *CorruptDataWarning) Is(target error) bool { return target == ErrCorruptData }

// Unwrap returns the decoding failure.
func (w *CorruptDataWarning) Unwrap() error { return w.Err }

// PersistenceError reports a failed write or removal of the backing storage.
// The in-memory effect of the operation may already have happened; the
// caller decides whether to retry Save.
type PersistenceError struct {
	Op     string // "save" or "purge"
	Target string // storage location
	Err    error
}

// Error names the operation, its target and the failure.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

// Is matches ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Unwrap returns the underlying storage failure.
func (e *PersistenceError) Unwrap() error { return e.Err }
