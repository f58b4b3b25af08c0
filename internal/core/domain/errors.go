package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Adapters match on these with errors.Is to pick a response.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports a field that violates an entity invariant.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError reports a uniqueness violation raised by the store.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "record already exists"
	}
	return fmt.Sprintf("a client with this %s already exists", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
