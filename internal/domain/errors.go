package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDifficulty is returned when a review difficulty is outside
	// the accepted 1 (easy), 2 (normal), 3 (hard) range.
	ErrInvalidDifficulty = errors.New("invalid difficulty: must be 1 (easy), 2 (normal) or 3 (hard)")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a field-level validation failure. It carries the
// offending field so API consumers get actionable messages without exposing
// internal detail.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field. The
// underlying error may be nil when the failure has no deeper cause.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the underlying error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
