// Package domain defines the core business entities and errors.
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

	// ErrInvalidTaskStatus is returned when a status is not one of the defined values.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidStatusTransition is returned when a requested status would move
	// a task backwards in the status order.
	ErrInvalidStatusTransition = errors.New("invalid task status transition")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil, ErrValidation is used.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err is a validation failure of any kind.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrValidation)
}

// StatusTransitionError records a rejected status change.
type StatusTransitionError struct {
	From TaskStatus
	To   TaskStatus
}

// Error implements the error interface for StatusTransitionError.
func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrInvalidStatusTransition, e.From, e.To)
}

// Unwrap lets errors.Is match ErrInvalidStatusTransition.
func (e *StatusTransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}
