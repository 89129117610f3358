package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrValidationFailed indicates that validation checks have failed,
	// either locally or because the store rejected a reference or column value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrTransport indicates that the store or the message transport could not be
	// reached, or the caller's deadline expired. Callers may retry registration.
	ErrTransport = errors.New("transport failure")

	// ErrDecode indicates that an event payload could not be decoded.
	ErrDecode = errors.New("decode failure")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match field errors.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
