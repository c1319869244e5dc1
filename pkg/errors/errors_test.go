package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapWithCode(t *testing.T) {
	require.NoError(t, WrapWithCode(nil, "config", "ignored"))

	err := WrapWithCode(ErrStorage, "record_write", "rename posted.json")
	require.EqualError(t, err, "rename posted.json: storage failure")
	require.True(t, Is(err, ErrStorage))
	require.False(t, Is(err, ErrInvalidInput))
}

func TestGetCodeLooksThroughWrapping(t *testing.T) {
	coded := WrapWithCode(ErrInvalidInput, "config", "IG_ACCESS_TOKEN is empty")

	require.Equal(t, "config", GetCode(coded))
	require.Equal(t, "config", GetCode(fmt.Errorf("could not build: %w", coded)))
	require.Equal(t, "", GetCode(context.Canceled))
	require.Equal(t, "", GetCode(nil))

	var e *Error
	require.True(t, As(fmt.Errorf("outer: %w", coded), &e))
	require.Equal(t, "IG_ACCESS_TOKEN is empty", e.Message)
}
