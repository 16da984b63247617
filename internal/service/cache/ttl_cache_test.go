package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newClockCache(ttl time.Duration) (*TTLCache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewTTLCache(ttl, WithClock(clk.Now)), clk
}

func TestTTLCacheFreshness(t *testing.T) {
	c, clk := newClockCache(60 * time.Second)

	put := c.Put("USD", []byte(`{"currency":"USD"}`))
	got, ok := c.Get("USD")
	require.True(t, ok)
	assert.Equal(t, put.ETag, got.ETag)

	clk.Advance(59 * time.Second)
	_, ok = c.Get("USD")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("USD")
	assert.False(t, ok, "age == ttl is stale")
	assert.Equal(t, 0, c.Len())
}

func TestTTLCachePutSweepsStale(t *testing.T) {
	c, clk := newClockCache(time.Minute)
	c.Put("USD", []byte("a"))
	c.Put("EUR", []byte("b"))
	clk.Advance(2 * time.Minute)

	c.Put("JPY", []byte("c"))
	assert.Equal(t, 1, c.Len())
}

func TestETagStable(t *testing.T) {
	a := ETag([]byte(`{"currency":"USD","pairs":[]}`))
	b := ETag([]byte(`{"currency":"USD","pairs":[]}`))
	c := ETag([]byte(`{"currency":"USD","pairs":[1]}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 18)
	assert.Equal(t, byte('"'), a[0])
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	c, _ := newClockCache(time.Minute)

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("payload"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, _, err := c.GetOrLoad(context.Background(), "USD", load)
			assert.NoError(t, err)
			assert.Equal(t, []byte("payload"), e.Payload)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, hit, err := c.GetOrLoad(context.Background(), "USD", load)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newClockCache(time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrLoad(context.Background(), "USD", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoadCallerCancelDoesNotFailOthers(t *testing.T) {
	c, _ := newClockCache(time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("payload"), nil
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrLoad(leaderCtx, "USD", load)
		leaderErr <- err
	}()
	<-started

	type result struct {
		e   Entry
		err error
	}
	follower := make(chan result, 1)
	go func() {
		e, _, err := c.GetOrLoad(context.Background(), "USD", load)
		follower <- result{e, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, []byte("payload"), got.e.Payload)
	assert.Equal(t, 1, c.Len(), "the shared load still fills the cache")
}
