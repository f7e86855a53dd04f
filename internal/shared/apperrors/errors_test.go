package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"wanderly/internal/shared/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", apperrors.NotFound("cart not found"))

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "cart not found", apperrors.Message(err))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Upstream("failed to load bookings", cause)

	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to load bookings: connection refused", err.Error())
	assert.Equal(t, "failed to load bookings", apperrors.Message(err))
}

func TestMessageForForeignErrors(t *testing.T) {
	assert.Equal(t, "internal server error", apperrors.Message(errors.New("boom")))
}
