package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error", func(t *testing.T) {
		err := New(CodeCapExceeded, "hard cap exceeded")
		assert.True(t, HasCode(err, CodeCapExceeded))
		assert.False(t, HasCode(err, CodeBelowMinimum))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("purchase: %w", New(CodeSaleNotOpen, "sale is not open"))
		assert.True(t, Is(err, CodeSaleNotOpen))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("keeps cause reachable", func(t *testing.T) {
		err := Wrap(cause, CodeInternal, "failed to load ledger")
		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})
}

func TestErrorsIsMatchesCode(t *testing.T) {
	err := New(CodeTooEarly, "sale has not closed")
	require.ErrorIs(t, err, New(CodeTooEarly, "any message"))
	assert.NotErrorIs(t, err, New(CodeAlreadyFinalized, "sale has not closed"))
}
