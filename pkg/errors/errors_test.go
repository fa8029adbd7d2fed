package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError(
		FieldError{Field: "title", Message: "Title must be at least 5 characters"},
		FieldError{Field: "images", Message: "At least one image is required"},
	)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: title: Title must be at least 5 characters; images: At least one image is required", err.Error())

	wrapped := fmt.Errorf("create item: %w", err)
	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Len(t, ve.Fields, 2)
}

func TestNotFoundFamily(t *testing.T) {
	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrItemNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrSwapNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrItemNotFound, ErrSwapNotFound)
}

func TestInvalidSwap(t *testing.T) {
	err := InvalidSwap("pointsUsed is required for POINTS_REDEMPTION")
	assert.ErrorIs(t, err, ErrInvalidSwapRequest)
	assert.Contains(t, err.Error(), "pointsUsed is required")
}

func TestForbiddenIsUnauthorized(t *testing.T) {
	err := fmt.Errorf("%w: only the item owner can accept", ErrForbidden)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, ErrUnauthorized, ErrForbidden)
}
