package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrUnauthorized indicates that the caller is not the owner of the entity it tried to mutate
	ErrUnauthorized = errors.New("caller is not the owner")

	// ErrNotProvisioned indicates that the backing store for a feature does not exist yet
	ErrNotProvisioned = errors.New("feature not provisioned")

	// ErrConflict indicates that a write collided with a concurrent writer on a unique key
	ErrConflict = errors.New("conflicting write")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")
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

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
