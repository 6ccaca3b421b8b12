// internal/cachestore/store.go
//
// Tag-aware TTL cache store.
//
// Context
// -------
// Normalized content is cached under composite keys (see content.CacheKey)
// with an expiry instant and a set of invalidation tags.  Expiry is lazy: a
// Get past the entry's instant treats it as absent and drops it.  A
// background sweep also runs so an idle process does not hold dead entries
// forever; the sweep is an optimization, never a correctness requirement.
//
// The store is constructed explicitly and passed by reference to whoever
// composes the read path.  No package-level state.
package cachestore

import (
	"sync"
	"time"

	"github.com/yanizio/curator/internal/metrics"
)

// SweepInterval is how often the background pass removes expired entries.
const SweepInterval = 5 * time.Minute

// Entry wraps one cached value.
type Entry struct {
	Key       string
	Value     any
	Tags      []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// expired reports whether the entry is past its expiry at now.
func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is the contract shared by the in-memory map and the MySQL backing.
type Store interface {
	// Get returns the live entry for key.  Expired entries are absent.
	Get(key string) (Entry, bool)
	// Put stores value under key, overwriting any existing entry.  A ttl
	// of zero or less writes an already-expired entry, so the next Get is
	// a miss; callers wanting a default TTL resolve it themselves.
	Put(key string, value any, ttl time.Duration, tags []string)
	// InvalidateByTag removes every entry whose tag set contains tag and
	// reports how many were dropped.
	InvalidateByTag(tag string) int
	// Len reports the number of stored entries, expired ones included.
	Len() int
}

// Memory is the default Store: a mutex-guarded map with a sweep ticker.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry

	sweepTicker *time.Ticker
	done        chan struct{}
}

// NewMemory constructs a Memory store and starts the background sweep.
// Call Close when the store is no longer needed (tests; the long-running
// service just lets process exit handle it).
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]Entry),
		done:    make(chan struct{}),
	}
	m.sweepTicker = time.NewTicker(SweepInterval)
	go m.sweepLoop()
	return m
}

func (m *Memory) Get(key string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ent, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}
	if ent.expired(time.Now()) {
		delete(m.entries, key)
		metrics.CacheEvictionsTotal.WithLabelValues("expired").Inc()
		metrics.CacheEntries.Set(float64(len(m.entries)))
		return Entry{}, false
	}
	return ent, true
}

func (m *Memory) Put(key string, value any, ttl time.Duration, tags []string) {
	now := time.Now()
	expires := now.Add(ttl)
	if ttl <= 0 {
		// Zero or negative TTL means the entry is born expired; the next
		// Get treats it as absent.
		expires = now
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[key]; ok {
		metrics.CacheEvictionsTotal.WithLabelValues("overwrite").Inc()
	}
	m.entries[key] = Entry{
		Key:       key,
		Value:     value,
		Tags:      tags,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	metrics.CacheEntries.Set(float64(len(m.entries)))
}

func (m *Memory) InvalidateByTag(tag string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dropped int
	for key, ent := range m.entries {
		for _, t := range ent.Tags {
			if t == tag {
				delete(m.entries, key)
				dropped++
				break
			}
		}
	}
	if dropped > 0 {
		metrics.CacheEvictionsTotal.WithLabelValues("tag").Add(float64(dropped))
		metrics.CacheEntries.Set(float64(len(m.entries)))
	}
	return dropped
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Purge drops everything.  Used by tests and the admin surface.
func (m *Memory) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	metrics.CacheEntries.Set(0)
}

// Close stops the sweep goroutine.
func (m *Memory) Close() {
	m.sweepTicker.Stop()
	close(m.done)
}

func (m *Memory) sweepLoop() {
	for {
		select {
		case <-m.done:
			return
		case <-m.sweepTicker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var dropped int
	for key, ent := range m.entries {
		if ent.expired(now) {
			delete(m.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.CacheEvictionsTotal.WithLabelValues("expired").Add(float64(dropped))
		metrics.CacheEntries.Set(float64(len(m.entries)))
	}
}
