package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLockNotHeld = errors.New("cache: lock not held")
)

// Locker is a best-effort mutual-exclusion primitive keyed by name. TryLock
// never blocks; a false result means another holder owns the key. Refresh
// extends a lock this holder still owns and returns ErrLockNotHeld otherwise.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Refresh(ctx context.Context, key string, ttl time.Duration) error
	Unlock(ctx context.Context, key string) error
	Close() error
}
