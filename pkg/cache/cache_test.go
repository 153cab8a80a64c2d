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
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSetGet(t *testing.T) {
	c := New()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("key", "value", time.Minute)
	v, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	c.Set("key", "replaced", time.Minute)
	v, ok = c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "replaced", v)
}

func TestLazyExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock))

	c.Set("key", 42, time.Minute)

	clock.Advance(59 * time.Second)
	v, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok)

	// The expired entry was evicted on that read, not merely skipped.
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock))

	c.Set("key", "value", 0)
	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c := New()

	c.Set("key", "value", time.Minute)
	assert.True(t, c.Invalidate("key"))
	assert.False(t, c.Invalidate("key"))

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()

	c.Set("catalog:tricks", 1, time.Minute)
	c.Set("catalog:articles", 2, time.Minute)
	c.Set("other:key", 3, time.Minute)

	n := c.InvalidatePrefix("catalog:")
	assert.Equal(t, 2, n)

	_, ok := c.Get("catalog:tricks")
	assert.False(t, ok)
	_, ok = c.Get("catalog:articles")
	assert.False(t, ok)
	v, ok := c.Get("other:key")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 0, c.InvalidatePrefix("catalog:"))
}

func TestStats(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock))

	c.Set("key", "value", time.Minute)
	c.Get("key")
	c.Get("key")
	c.Get("missing")

	clock.Advance(2 * time.Minute)
	c.Get("key") // expired, counts as a miss

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestFillCachesResult(t *testing.T) {
	c := New()

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "fetched", nil
	}

	v, err := c.Fill(context.Background(), "key", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", v)

	v, err = c.Fill(context.Background(), "key", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched", v)

	assert.Equal(t, int32(1), calls.Load())
}

func TestFillErrorNotCached(t *testing.T) {
	c := New()

	boom := errors.New("store down")
	_, err := c.Fill(context.Background(), "key", time.Minute, func(ctx context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := c.Fill(context.Background(), "key", time.Minute, func(ctx context.Context) (any, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestFillConcurrentSingleExecution(t *testing.T) {
	c := New()

	var calls atomic.Int32
	release := make(chan struct{})

	const waiters = 20
	var wg sync.WaitGroup
	results := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Fill(context.Background(), "key", time.Minute, func(ctx context.Context) (any, error) {
				calls.Add(1)
				<-release
				return "shared", nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile up on the same key, then let the
	// single fetch finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}
