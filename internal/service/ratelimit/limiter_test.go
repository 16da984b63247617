package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowRefill(t *testing.T) {
	clock := time.Unix(0, 0)
	l := New()
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("fx", 2, 1))
	assert.True(t, l.Allow("fx", 2, 1))
	assert.False(t, l.Allow("fx", 2, 1))
	assert.True(t, l.Allow("other", 1, 1), "buckets are per key")

	clock = clock.Add(time.Second)
	assert.True(t, l.Allow("fx", 2, 1))
	assert.False(t, l.Allow("fx", 2, 1))
}

func TestWaitPaces(t *testing.T) {
	l := New()
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, "fx", 1, 50))
	}
	// first token is free, the next two cost 20ms each
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	require.NoError(t, l.Wait(context.Background(), "slow", 1, 0.001))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx, "slow", 1, 0.001), context.DeadlineExceeded)
}
