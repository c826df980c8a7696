package budget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAddWithinLimitAccumulates(t *testing.T) {
	b := New(1.0)
	require.NoError(t, b.TryAdd(0.4))
	require.NoError(t, b.TryAdd(0.5))
	assert.InDelta(t, 0.9, b.SpentUSD, 1e-9)
	assert.InDelta(t, 0.1, b.Remaining(), 1e-9)
}

func TestTryAddOverLimitRejectsAndLeavesSpendUnchanged(t *testing.T) {
	b := New(1.0)
	require.NoError(t, b.TryAdd(0.9))

	err := b.TryAdd(0.2)
	var exceeded *ExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.InDelta(t, 0.9, b.SpentUSD, 1e-9)
}

func TestRemainingNeverNegative(t *testing.T) {
	b := &Budget{LimitUSD: 1.0, SpentUSD: 1.5}
	assert.Equal(t, 0.0, b.Remaining())
}
