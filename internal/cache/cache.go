// Package cache provides a small in-process TTL cache used as a
// read-through cache for user directory lookups. Staleness is bounded by
// the TTL and writes invalidate their entry explicitly.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[K]entry[V]

	// now is replaceable in tests
	now func() time.Time
}

func NewTTL[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// GetOrPopulate returns the cached value for key, calling populate and
// caching its result on a miss or after expiry. Errors from populate are
// returned without caching.
func (c *TTL[K, V]) GetOrPopulate(key K, populate func() (V, error)) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	value, err := populate()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}

func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the entry for key. Called on every write to the backing
// store so updates are visible immediately instead of after TTL expiry.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
