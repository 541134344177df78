package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(base, "store unavailable")

	require.Equal(t, "store unavailable: connection refused", err.Error())
	require.ErrorIs(t, err, base)
}

func TestWithInternalDoesNotMutateOriginal(t *testing.T) {
	wrapped := ErrNotFound.WithInternal(errors.New("missing row"))

	require.Nil(t, ErrNotFound.Internal)
	require.NotNil(t, wrapped.Internal)
	require.Equal(t, ErrNotFound.Code, wrapped.Code)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	app := New("REMINDER_GONE", "Reminder no longer exists", http.StatusNotFound)
	require.Equal(t, app, FromError(app))

	wrapped := fmt.Errorf("dispatch: %w", app)
	require.Equal(t, app, FromError(wrapped))

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Internal, "boom")
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("lead time must be positive")
	require.Equal(t, ErrBadRequest.Code, err.Code)
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "lead time must be positive", err.Message)
}
