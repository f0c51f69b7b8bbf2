package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapWithCodeKeepsChain(t *testing.T) {
	err := WrapWithCode(ErrRateLimited, CodeAI, "groq call")

	require.Equal(t, CodeAI, GetCode(err))
	require.True(t, Transient(err))
	require.EqualError(t, err, "groq call: rate limited")
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, "nothing"))
	require.NoError(t, WrapWithCode(nil, CodePublish, "nothing"))
}

func TestGetCodeSkipsUncodedLayers(t *testing.T) {
	inner := WrapWithCode(ErrServiceUnavailable, CodePublish, "tweet")
	err := Wrap(fmt.Errorf("drain: %w", inner), "queue item")

	require.Equal(t, CodePublish, GetCode(err))
	require.Empty(t, GetCode(fmt.Errorf("plain: %w", ErrUnsupported)))
	require.False(t, Transient(ErrUnsupported))
}
