// Package cardcache holds a small in-memory LRU for card lookups.
package cardcache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a fixed-capacity least-recently-used cache safe for concurrent use.
// It counts hits, misses and evictions on top of the underlying LRU.
type Cache[K comparable, V any] struct {
	lru       *lru.Cache[K, V]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats reports cache usage.
type Stats struct {
	Entries   int
	Hits      int
	Misses    int
	Evictions int
}

// New creates a cache holding at most capacity entries. A capacity below 1
// is treated as 1.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	l, err := lru.New[K, V](capacity)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Cache[K, V]{lru: l}
}

// Get returns the cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.lru.Add(key, value) {
		c.evictions.Add(1)
	}
}

// Remove deletes key if present.
func (c *Cache[K, V]) Remove(key K) {
	c.lru.Remove(key)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Clear drops every entry and resets the counters.
func (c *Cache[K, V]) Clear() {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats returns a snapshot of cache usage.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Entries:   c.lru.Len(),
		Hits:      int(c.hits.Load()),
		Misses:    int(c.misses.Load()),
		Evictions: int(c.evictions.Load()),
	}
}
