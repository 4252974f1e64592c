// Package cache memoizes generated signals per (symbol, timeframe) with a
// TTL and LRU eviction, re-validating freshness against the current price
// on every read. It defines SignalCache as the pipeline-facing interface so
// a Redis-backed implementation (RedisCache) can stand in for multi-
// instance deployments without the orchestrator knowing the difference.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// SignalCache is the interface the pipeline orchestrator depends on. The
// spec's default implementation is the in-memory LRUCache; RedisCache
// satisfies the same contract for deployments sharing a cache across
// multiple pipeline instances.
type SignalCache interface {
	Get(key string, currentPrice func() float64) (value any, ok bool)
	Set(key string, value any, ttl time.Duration)
	CleanupExpired() int
	Stats() Stats
}

// Stats mirrors the counters the spec requires be exposed.
type Stats struct {
	Size        int
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// HitRate returns hits/(hits+misses), or 0 when nothing has been read yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key        string
	value      any
	expiresAt  time.Time
	entryPrice float64 // the entry price embedded in the cached signal, for freshness re-validation
}

// LRUCache is the spec's default signal cache: an in-memory map guarded by
// a single mutex (the spec's only cross-request shared state) backed by a
// doubly linked list for O(1) most-recently-used reordering, grounded on
// the teacher's internal/cache/cache_service.go CacheService shape but
// reimplemented in-process instead of against Redis, since the spec's
// default cache has no network collaborator.
type LRUCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int

	hits        int64
	misses      int64
	evictions   int64
	expirations int64

	// freshnessPct is the maximum fractional distance between a cached
	// entry's stored entry price and the current price before the entry is
	// invalidated on read (the spec's universal 5% freshness bound).
	freshnessPct float64
}

// NewLRUCache builds a cache with the given capacity and the spec's 5%
// freshness bound.
func NewLRUCache(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		items:        make(map[string]*list.Element, capacity),
		order:        list.New(),
		capacity:     capacity,
		freshnessPct: 0.05,
	}
}

// SetWithEntryPrice stores value like Set and also records entryPrice, which
// lets Get re-validate freshness without deserializing the cached value
// (Set records 0, which skips that check). Callers that cache a *pipeline.Signal
// (or any type with an entry price) pass it explicitly to avoid an import
// cycle between cache and pipeline.
func (c *LRUCache) SetWithEntryPrice(key string, value any, ttl time.Duration, entryPrice float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		e.entryPrice = entryPrice
		return
	}

	e := &entry{key: key, value: value, expiresAt: time.Now().Add(ttl), entryPrice: entryPrice}
	el := c.order.PushFront(e)
	c.items[key] = el

	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Set satisfies SignalCache for callers with no freshness re-validation need.
func (c *LRUCache) Set(key string, value any, ttl time.Duration) {
	c.SetWithEntryPrice(key, value, ttl, 0)
}

// Get returns the cached value if present, unexpired, and fresh against
// currentPrice(). currentPrice is called lazily — only on a cache hit —
// since it may itself be nontrivial to compute (reading the latest bar).
func (c *LRUCache) Get(key string, currentPrice func() float64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeElement(el)
		c.expirations++
		c.misses++
		return nil, false
	}

	if currentPrice != nil && e.entryPrice > 0 {
		price := currentPrice()
		if price > 0 {
			dist := e.entryPrice - price
			if dist < 0 {
				dist = -dist
			}
			if dist/price > c.freshnessPct {
				c.removeElement(el)
				c.misses++
				return nil, false
			}
		}
	}

	c.order.MoveToFront(el)
	c.hits++
	return e.value, true
}

// CleanupExpired sweeps and removes every expired entry, returning the
// number removed.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()
	var next *list.Element
	for el := c.order.Back(); el != nil; el = next {
		next = el.Prev()
		e := el.Value.(*entry)
		if now.After(e.expiresAt) {
			c.removeElement(el)
			c.expirations++
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache's counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:        c.order.Len(),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}

func (c *LRUCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.removeElement(el)
	c.evictions++
}

func (c *LRUCache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	delete(c.items, e.key)
	c.order.Remove(el)
}
