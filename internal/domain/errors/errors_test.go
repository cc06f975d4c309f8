package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_WithDetailsKeepsIdentityFields(t *testing.T) {
	detailed := ErrValidationFailed.WithDetails("rating must be between 1 and 5")

	assert.Equal(t, http.StatusBadRequest, detailed.HTTPCode())
	assert.Equal(t, "VALIDATION_FAILED", detailed.ErrorCode())
	assert.Equal(t, ErrValidationFailed.Message(), detailed.Message())
	assert.Equal(t, "rating must be between 1 and 5", detailed.Details())
	assert.Empty(t, ErrValidationFailed.Details(), "the shared sentinel must not be mutated")
}

func TestBaseError_WrapMessageIsDetectable(t *testing.T) {
	err := ErrInvalidState.WrapMessage("donation is Accepted")

	assert.ErrorIs(t, err, ErrInvalidState)

	var appErr AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.HTTPCode())
}

func TestDatabaseExecuteError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewDatabaseExecuteError(cause, "failed to update donation")

	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", err.ErrorCode())
	assert.Equal(t, "failed to update donation", err.Details())
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)
}
