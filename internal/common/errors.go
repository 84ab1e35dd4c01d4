// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup and uniqueness errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Rejected requests. None of these change any state.
	ErrValidation      = errors.New("validation failed")
	ErrProtectedEntity = errors.New("protected entity")
	ErrImmutableEntity = errors.New("immutable entity")

	// ErrStorage marks failures of the underlying database.
	ErrStorage = errors.New("storage failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError describes input rejected before any write.
// It matches ErrValidation with errors.Is and unwraps to Err, which names
// the more specific reason when there is one.
type ValidationError struct {
	Err    error
	Value  any
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
	if e.Err != nil {
		return fmt.Sprintf("%v: %s", e.Err, msg)
	}
	return msg
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(err error, field string, value any, reason string) error {
	return &ValidationError{
		Err:    err,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// StorageError wraps a database failure with the operation that hit it.
type StorageError struct {
	Err error
	Op  string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a storage failure of op. A nil err stays nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage turns an error into a short message for the terminal,
// naming the kind of failure when it is one of the known categories.
func UserMessage(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.Error()
	case errors.Is(err, ErrProtectedEntity):
		return "not allowed: " + err.Error()
	case errors.Is(err, ErrImmutableEntity):
		return "cannot modify: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "not found: " + err.Error()
	case errors.Is(err, ErrValidation):
		return "invalid input: " + err.Error()
	case errors.Is(err, ErrDuplicateEntry):
		return "already exists: " + err.Error()
	default:
		return err.Error()
	}
}
