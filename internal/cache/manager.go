package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manager owns the process-wide set of named caches (documents, tags,
// search, aggregations - spec.md §4.3) plus the access-count write-behind
// buffer, so cmd/kg's cache subcommands and the storage-layer callers share
// one place to look caches up by name.
type Manager struct {
	mu     sync.RWMutex
	caches map[string]*Cache

	accessMu      sync.Mutex
	accessCounts  map[int64]int64
	flushSink     func(ctx context.Context, counts map[int64]int64) error
	flushThreshold int
	lastFlush     time.Time
	flushInterval time.Duration
}

// Spec describes one named cache's capacity and TTL, mirroring
// config.CacheSpec without importing the config package (avoids an import
// cycle, since config is read by callers that also construct the manager).
type Spec struct {
	Capacity int
	TTL      time.Duration
}

// NewManager builds a Manager with one Cache per entry in specs.
func NewManager(specs map[string]Spec) *Manager {
	m := &Manager{
		caches:         make(map[string]*Cache, len(specs)),
		accessCounts:   make(map[int64]int64),
		flushThreshold: 100,
		flushInterval:  30 * time.Second,
	}
	for name, spec := range specs {
		m.caches[name] = New(spec.Capacity, spec.TTL)
	}
	return m
}

// Named returns the cache registered under name, or nil if unknown.
func (m *Manager) Named(name string) *Cache {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.caches[name]
}

// Names returns the registered cache names in sorted order, for
// `kg cache stats`.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.caches))
	for n := range m.caches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InvalidateAll clears every registered cache. Its caller is `kg cache
// clear`; document, link and tag writes do not invalidate caches.
func (m *Manager) InvalidateAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.caches {
		c.Invalidate()
	}
}

// SetFlushSink wires the function that actually persists buffered access
// counts - normally storage.Storage.FlushAccessCounts.
func (m *Manager) SetFlushSink(sink func(ctx context.Context, counts map[int64]int64) error) {
	m.accessMu.Lock()
	defer m.accessMu.Unlock()
	m.flushSink = sink
}

// RecordAccess buffers one access-count increment for docID (spec.md §4.3's
// write-coalescing design: accumulate in memory, flush in bulk rather than
// UPDATE per read). Flushes immediately if the buffer has grown past its
// threshold or enough time has elapsed since the last flush.
func (m *Manager) RecordAccess(ctx context.Context, docID int64) error {
	m.accessMu.Lock()
	m.accessCounts[docID]++
	shouldFlush := len(m.accessCounts) >= m.flushThreshold ||
		(!m.lastFlush.IsZero() && time.Since(m.lastFlush) >= m.flushInterval)
	m.accessMu.Unlock()

	if shouldFlush {
		return m.FlushAccessCounts(ctx)
	}
	return nil
}

// FlushAccessCounts copies and clears the in-memory buffer, then flushes it
// through the sink outside the lock, so a slow flush never blocks
// concurrent RecordAccess calls.
func (m *Manager) FlushAccessCounts(ctx context.Context) error {
	m.accessMu.Lock()
	if len(m.accessCounts) == 0 {
		m.lastFlush = time.Now()
		m.accessMu.Unlock()
		return nil
	}
	counts := m.accessCounts
	m.accessCounts = make(map[int64]int64)
	sink := m.flushSink
	m.lastFlush = time.Now()
	m.accessMu.Unlock()

	if sink == nil {
		return nil
	}
	return sink(ctx, counts)
}
