package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure category. Callers test with errors.Is.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	ErrCorrupt            = errors.New("corrupt snapshot")
	ErrValidation         = errors.New("validation failed")
)

// StorageError wraps a connection or transaction failure
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NotFoundError reports a missing commit or snapshot
type NotFoundError struct {
	Kind string // "commit" or "snapshot"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CorruptError reports a stored snapshot that cannot be materialized
type CorruptError struct {
	ID     string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot %s is corrupt: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("snapshot %s is corrupt: %s", e.ID, e.Reason)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Storage wraps err as a StorageError unless it already carries a category
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if Categorized(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// Categorized reports whether err already maps onto one of the sentinels
func Categorized(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCorrupt) ||
		errors.Is(err, ErrValidation)
}

// Category names the failure category of err, for transports that report it
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "storage_unavailable"
	}
}
