package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUnderBudgetReturnsImmediately(t *testing.T) {
	limiter := NewTokenLimiter(1000)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 400))
	require.NoError(t, limiter.Wait(context.Background(), 400))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Equal(t, 200, limiter.GetRemaining())
}

func TestOversizedRequestAdmittedInFreshWindow(t *testing.T) {
	limiter := NewTokenLimiter(100)

	// A request larger than the whole budget is admitted alone.
	require.NoError(t, limiter.Wait(context.Background(), 500))
	assert.Equal(t, 0, limiter.GetRemaining())
}

func TestWaitBlocksUntilContextCancelled(t *testing.T) {
	limiter := NewTokenLimiter(100)
	require.NoError(t, limiter.Wait(context.Background(), 90))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, 50)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetRemainingNeverNegative(t *testing.T) {
	limiter := NewTokenLimiter(100)
	require.NoError(t, limiter.Wait(context.Background(), 500))
	assert.Equal(t, 0, limiter.GetRemaining())
}
