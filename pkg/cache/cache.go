// Package cache is the in-process store for shared catalog aggregates.
//
// Entries carry their own TTL and are expired lazily: a Get past the
// deadline evicts the entry and reports a miss. There is no background
// sweeper; the keyspace is small and operator-controlled, so stale entries
// cost one map slot until the next read. The whole store resets on process
// restart.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL key/value store shared across requests. Fill deduplicates
// concurrent misses on the same key through singleflight, so a cold key is
// fetched once no matter how many requests race on it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   Clock
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, used by tests to step time.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		clock:   systemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key, or false on a miss. An expired entry is
// evicted on the spot and counts as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if !e.expiresAt.After(c.clock.Now()) {
		delete(c.entries, key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.value, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = &entry{value: value, expiresAt: c.clock.Now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops a single key. Returns whether the key was present.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()
	return ok
}

// InvalidatePrefix drops every key with the given prefix and returns how
// many were evicted. Admin catalog mutations call this after any write.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Fill returns the cached value for key, or runs fn once to produce it.
// Concurrent callers missing on the same key share a single fn execution;
// the result is stored with the given TTL. A fn error is returned to every
// waiter and nothing is stored.
func (c *Cache) Fill(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another waiter may have filled the key while we queued.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	return v, err
}

// Stats reports the hit/miss counters. Best effort observability only.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
