package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements Locker for a single process. Locks expire after
// their ttl so a crashed holder cannot wedge a job forever.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]time.Time), now: time.Now}
}

func (ml *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	if exp, ok := ml.locks[key]; ok && now.Before(exp) {
		return false, nil
	}
	ml.locks[key] = now.Add(ttl)
	return true, nil
}

func (ml *MemoryLocker) Refresh(_ context.Context, key string, ttl time.Duration) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := ml.now()
	exp, ok := ml.locks[key]
	if !ok || !now.Before(exp) {
		return ErrLockNotHeld
	}
	ml.locks[key] = now.Add(ttl)
	return nil
}

func (ml *MemoryLocker) Unlock(_ context.Context, key string) error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if _, ok := ml.locks[key]; !ok {
		return ErrLockNotHeld
	}
	delete(ml.locks, key)
	return nil
}

// Close is a no-op.
func (ml *MemoryLocker) Close() error { return nil }
