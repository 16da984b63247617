package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, err := l.TryLock(ctx, LockKey("update_fx"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.TryLock(ctx, LockKey("update_fx"), time.Minute)
	assert.False(t, ok, "held lock must not be re-acquired")

	ok, _ = l.TryLock(ctx, LockKey("update_calendar"), time.Minute)
	assert.True(t, ok, "locks are per key")

	require.NoError(t, l.Unlock(ctx, LockKey("update_fx")))
	assert.ErrorIs(t, l.Unlock(ctx, LockKey("update_fx")), ErrLockNotHeld)

	ok, _ = l.TryLock(ctx, LockKey("update_fx"), time.Minute)
	assert.True(t, ok)
}

func TestMemoryLockerExpiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, _ := l.TryLock(ctx, "k", time.Second)
	require.True(t, ok)
	now = now.Add(2 * time.Second)
	ok, _ = l.TryLock(ctx, "k", time.Second)
	assert.True(t, ok, "expired lock is reclaimable")
}

func TestMemoryLockerRefresh(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.ErrorIs(t, l.Refresh(ctx, "k", time.Minute), ErrLockNotHeld)

	ok, _ := l.TryLock(ctx, "k", time.Minute)
	require.True(t, ok)
	now = now.Add(50 * time.Second)
	require.NoError(t, l.Refresh(ctx, "k", time.Minute))

	now = now.Add(50 * time.Second)
	ok, _ = l.TryLock(ctx, "k", time.Minute)
	assert.False(t, ok, "refreshed lock outlives its first ttl")

	now = now.Add(time.Minute)
	assert.ErrorIs(t, l.Refresh(ctx, "k", time.Minute), ErrLockNotHeld, "expired lock cannot be revived")
}
