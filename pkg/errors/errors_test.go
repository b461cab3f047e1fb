package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredefinedStatuses(t *testing.T) {
	cases := map[*Error]int{
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrInactiveAccount:    http.StatusForbidden,
		ErrNotFound:           http.StatusNotFound,
		ErrForbidden:          http.StatusForbidden,
		ErrUnauthorized:       http.StatusUnauthorized,
		ErrValidation:         http.StatusBadRequest,
		ErrInternal:           http.StatusInternalServerError,
		ErrConfiguration:      http.StatusUnprocessableEntity,
		ErrSchedulingFailed:   http.StatusUnprocessableEntity,
		ErrCacheMiss:          http.StatusNotFound,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.Status, err.Code)
	}
}

func TestCloneLeavesBaseUntouched(t *testing.T) {
	clone := Clone(ErrNotFound, "term not found")
	assert.Equal(t, "term not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.Equal(t, ErrNotFound.Code, clone.Code)
	assert.Nil(t, Clone(nil, "x"))
}

func TestFromErrorKeepsTypedErrorsAndWrapsOthers(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("load: %w", Wrap(cause, ErrSchedulingFailed.Code, ErrSchedulingFailed.Status, "no room"))

	typed := FromError(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, "SCHEDULING_FAILED", typed.Code)
	assert.True(t, errors.Is(wrapped, cause))

	plain := FromError(cause)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, ErrInternal.Status, plain.Status)
	assert.Nil(t, FromError(nil))
}
