package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", NotFound("book not found"), ErrNotFound},
		{"conflict", Conflict("already borrowed"), ErrConflict},
		{"validation", Validation("bad rating"), ErrValidation},
		{"unauthorized", Unauthorized("bad token"), ErrUnauthorized},
		{"forbidden", Forbidden("admins only"), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)

			wrapped := fmt.Errorf("create borrow: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)

			var e *Error
			assert.True(t, errors.As(wrapped, &e))
		})
	}
}

func TestMessage(t *testing.T) {
	err := NotFound("book not found")
	assert.Equal(t, "book not found", err.Error())
	assert.NotErrorIs(t, err, ErrConflict)
}
