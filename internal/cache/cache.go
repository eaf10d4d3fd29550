// Package cache provides the keyed, concurrent caches shared across the
// pipeline: the AST cache (path+content-hash -> parsed tree), the LSH
// signature cache, and the feature-vector cache. Adapted from the
// teacher's internal/cache/metrics_cache.go: a sync.Map for lock-free
// reads under concurrent access, atomic counters for hit/miss stats, and
// an LRU-style eviction trigger at a configured entry count. Where the
// teacher used sync.Map directly per cache kind, this is generalized into
// one generic Cache[V] so every keyed cache in the pipeline (spec.md §5
// "LRU cache and signature cache: keyed concurrent maps with an LRU
// eviction trigger") shares one implementation.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// entry wraps a cached value with bookkeeping for LRU eviction.
type entry[V any] struct {
	value      V
	lastAccess atomic.Int64 // unix nanos
}

// Cache is a concurrent, content-addressed cache with capacity-triggered
// LRU eviction. The zero value is not usable; construct with New.
type Cache[V any] struct {
	mu       sync.Mutex // serializes eviction scans only
	data     sync.Map   // string -> *entry[V]
	keys     sync.Map   // string -> struct{} (membership, for eviction scan)
	maxEntries int
	count    atomic.Int64

	hits   atomic.Int64
	misses atomic.Int64
	evictions atomic.Int64
}

// New creates a cache that evicts its 25% oldest entries (by last access)
// once it holds more than maxEntries — the policy spec.md §5 specifies.
func New[V any](maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Cache[V]{maxEntries: maxEntries}
}

// Get returns the cached value for key, bumping its last-access time.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := c.data.Load(key)
	if !ok {
		c.misses.Add(1)
		return zero, false
	}
	c.hits.Add(1)
	e := raw.(*entry[V])
	e.lastAccess.Store(time.Now().UnixNano())
	return e.value, true
}

// GetOrCompute returns the cached value for key, computing and storing it
// via compute if absent. Concurrent callers that miss the same key are
// not coalesced: each may run compute, and the last Put wins. The AST
// service's "at most one concurrent parse per key" contract (spec.md
// §4.2) is kept by astsvc's own inflight table, not by this method.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, v)
	return v, nil
}

// Put inserts or overwrites the cached value for key, triggering eviction
// if the cache has grown past its configured capacity.
func (c *Cache[V]) Put(key string, value V) {
	e := &entry[V]{value: value}
	e.lastAccess.Store(time.Now().UnixNano())
	_, loaded := c.data.Swap(key, e)
	if !loaded {
		c.keys.Store(key, struct{}{})
		if c.count.Add(1) > int64(c.maxEntries) {
			c.evict()
		}
	}
}

// Delete removes key from the cache if present.
func (c *Cache[V]) Delete(key string) {
	if _, loaded := c.data.LoadAndDelete(key); loaded {
		c.keys.Delete(key)
		c.count.Add(-1)
	}
}

// evict removes the oldest 25% of entries by last-access time, the policy
// spec.md §5 specifies for both the LSH cache and the signature cache.
func (c *Cache[V]) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()

	type kv struct {
		key  string
		last int64
	}
	var all []kv
	c.keys.Range(func(k, _ any) bool {
		key := k.(string)
		if raw, ok := c.data.Load(key); ok {
			all = append(all, kv{key: key, last: raw.(*entry[V]).lastAccess.Load()})
		}
		return true
	})
	if len(all) <= c.maxEntries {
		return
	}

	// Partial selection sort for the oldest quartile; eviction batches are
	// infrequent and the quartile is small relative to total entries.
	toEvict := len(all) / 4
	if toEvict == 0 {
		toEvict = 1
	}
	for i := 0; i < toEvict && i < len(all); i++ {
		minIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].last < all[minIdx].last {
				minIdx = j
			}
		}
		all[i], all[minIdx] = all[minIdx], all[i]
		c.data.Delete(all[i].key)
		c.keys.Delete(all[i].key)
		c.count.Add(-1)
		c.evictions.Add(1)
	}
}

// Stats reports hit/miss/eviction counters for observability.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int64
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.count.Load(),
	}
}

// Len reports the approximate number of entries currently cached.
func (c *Cache[V]) Len() int {
	return int(c.count.Load())
}
