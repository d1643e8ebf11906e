package ese

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesSentinelThroughWrap(t *testing.T) {
	err := wrap(ErrNotFound, `table "Widgets"`, nil)
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrBadHeader))

	wrapped := fmt.Errorf("opening file: %w", err)
	require.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestError_IsDoesNotConflateSameKindSentinels(t *testing.T) {
	// ErrTruncatedValue and ErrMalformedRecord share ErrKindFormat but are
	// distinct sentinels; Is must not match across them.
	err := wrap(ErrTruncatedValue, "fixed region", nil)
	require.True(t, errors.Is(err, ErrTruncatedValue))
	require.False(t, errors.Is(err, ErrMalformedRecord))
}

func TestError_AsUnwrapsCause(t *testing.T) {
	cause := errors.New("short read")
	err := wrap(ErrBadHeader, "reading primary header", cause)

	var target *Error
	require.True(t, errors.As(err, &target))
	require.Equal(t, ErrKindFormat, target.Kind)
	require.True(t, errors.Is(err, ErrBadHeader))
	require.ErrorIs(t, err, cause)
}
