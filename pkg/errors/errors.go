package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrItemNotFound        = fmt.Errorf("item %w", ErrNotFound)
	ErrSwapNotFound        = fmt.Errorf("swap request %w", ErrNotFound)
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrInvalidSwapRequest  = errors.New("invalid swap request")
	ErrInvalidTransition   = errors.New("invalid swap status transition")
	ErrItemUnavailable     = errors.New("item is not available")
	ErrConcurrencyConflict = errors.New("concurrent modification, try again")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = fmt.Errorf("forbidden: %w", ErrUnauthorized)
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNilEntity           = errors.New("entity is nil")
	ErrInternal            = errors.New("internal error")
)

// FieldError is a single failed rule, addressed by its field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every failed field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// InvalidSwap wraps ErrInvalidSwapRequest with the reason the request was refused.
func InvalidSwap(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSwapRequest, reason)
}
