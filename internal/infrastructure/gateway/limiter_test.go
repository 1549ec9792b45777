package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AdmitsWithinBudget(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx))
	}
	assert.Equal(t, 0, l.Remaining())
}

func TestLimiter_BlocksUntilWindowResets(t *testing.T) {
	l := NewLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))

	start := time.Now()
	require.NoError(t, l.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLimiter_WaitHonorsCancellation(t *testing.T) {
	l := NewLimiter(1, time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_UpdateFromHeaders(t *testing.T) {
	l := NewLimiter(100, time.Minute)

	l.Update(2, time.Hour)
	assert.Equal(t, 2, l.Remaining())

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))
	assert.Equal(t, 0, l.Remaining())
}

func TestLimiter_NegativeRemainingIgnored(t *testing.T) {
	l := NewLimiter(5, time.Minute)
	l.Update(-1, 0)
	assert.Equal(t, 5, l.Remaining())
}

func TestLimiter_ConcurrentWaiters(t *testing.T) {
	l := NewLimiter(50, time.Minute)
	ctx := context.Background()

	done := make(chan error, 50)
	for i := 0; i < 50; i++ {
		go func() { done <- l.Wait(ctx) }()
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, <-done)
	}
	assert.Equal(t, 0, l.Remaining())
}
