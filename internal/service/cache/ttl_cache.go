package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry is one cached payload with its fingerprint.
type Entry struct {
	Payload    []byte
	ETag       string
	CapturedAt time.Time
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

// TTLCache holds at most one payload per key. Entries are fresh while their
// age is below the TTL. Stale entries are dropped lazily on read and swept on
// every write; there is no background timer.
type TTLCache struct {
	mu    sync.RWMutex
	m     map[string]Entry
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

func NewTTLCache(ttl time.Duration, opts ...Option) *TTLCache {
	c := &TTLCache{m: make(map[string]Entry), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *TTLCache) TTL() time.Duration { return c.ttl }

func (c *TTLCache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if !c.fresh(e, c.now()) {
		c.mu.Lock()
		// a concurrent Put may have replaced it
		if cur, ok := c.m[key]; ok && cur.CapturedAt.Equal(e.CapturedAt) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// Put stores payload under key and evicts every stale entry.
func (c *TTLCache) Put(key string, payload []byte) Entry {
	now := c.now()
	e := Entry{Payload: payload, ETag: ETag(payload), CapturedAt: now}

	c.mu.Lock()
	for k, old := range c.m {
		if !c.fresh(old, now) {
			delete(c.m, k)
		}
	}
	c.m[key] = e
	c.mu.Unlock()
	return e
}

// GetOrLoad returns the fresh entry for key or runs load once for all
// concurrent callers missing the same key. hit reports a cache hit.
//
// load runs detached from any single caller: a caller whose ctx ends gets
// ctx.Err() while the shared load carries on for the others and still fills
// the cache. load must bound itself.
func (c *TTLCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) (e Entry, hit bool, err error) {
	if e, ok := c.Get(key); ok {
		return e, true, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if e, ok := c.Get(key); ok {
			return e, nil
		}
		payload, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return c.Put(key, payload), nil
	})
	select {
	case <-ctx.Done():
		return Entry{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, false, res.Err
		}
		return res.Val.(Entry), false, nil
	}
}

func (c *TTLCache) Evict(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *TTLCache) fresh(e Entry, now time.Time) bool {
	return now.Sub(e.CapturedAt) < c.ttl
}

// ETag derives a short quoted fingerprint from the payload bytes.
func ETag(payload []byte) string {
	sum := sha256.Sum256(payload)
	return `"` + base64.RawURLEncoding.EncodeToString(sum[:])[:16] + `"`
}
