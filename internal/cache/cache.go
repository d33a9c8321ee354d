// Package cache provides bounded, TTL-based in-memory caching for read
// paths (spec.md §4.3): documents, tags, search results, and aggregation
// reports. It is adapted from the steveyegge-beads RPC layer's QueryCache
// (internal/rpc/cache.go) - same mutex-guarded map, same
// evict-expired-then-evict-oldest strategy under a size cap - generalized
// from a single hardcoded response cache into named, independently
// configured caches holding arbitrary values.
package cache

import (
	"sync"
	"time"
)

// Cache is a single bounded, TTL-based key/value store. Zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	enabled bool

	hits   int64
	misses int64
}

type entry struct {
	value     any
	timestamp time.Time
}

// New creates a cache with the given capacity and TTL. A non-positive
// capacity or TTL disables the cache (every Get misses, Set is a no-op),
// which is how operators turn off caching for one layer via config.
func New(capacity int, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		maxSize: capacity,
		enabled: capacity > 0 && ttl > 0,
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	if time.Since(e.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Set stores value under key, evicting expired entries and then the oldest
// entry if the cache is already at capacity.
func (c *Cache) Set(key string, value any) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictExpiredLocked()
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = &entry{value: value, timestamp: time.Now()}
}

// Invalidate clears every entry. Called by `kg cache clear`, directly for
// one named cache or through Manager.InvalidateAll for all of them.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Enabled reports whether this cache is actively caching.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// SetEnabled toggles caching without discarding configured size/TTL, for the
// `kg cache disable`/`kg cache enable` CLI commands.
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled {
		c.entries = make(map[string]*entry)
	}
}

// Stats is a point-in-time snapshot of cache performance.
type Stats struct {
	Entries  int
	MaxSize  int
	TTL      time.Duration
	Hits     int64
	Misses   int64
	HitRatio float64
	Enabled  bool
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	var ratio float64
	if total > 0 {
		ratio = float64(c.hits) / float64(total)
	}
	return Stats{
		Entries:  len(c.entries),
		MaxSize:  c.maxSize,
		TTL:      c.ttl,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRatio: ratio,
		Enabled:  c.enabled,
	}
}

// Cleanup removes every expired entry, for the periodic/manual
// `kg cache cleanup` command rather than waiting for eviction-on-Set.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.entries)
	c.evictExpiredLocked()
	return before - len(c.entries)
}

func (c *Cache) evictExpiredLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for key, e := range c.entries {
		if first || e.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.timestamp
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
