// Package cache provides an in-process TTL cache keyed by research-query
// hashes. The cache is the only state shared across concurrent pipeline runs.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a content-addressed store with per-read TTL evaluation.
type Cache interface {
	// Get returns the value stored under key if it is younger than ttl.
	// Expired entries are evicted and reported as absent.
	Get(key string, ttl time.Duration) (any, bool)
	// Set stores a value under key. Concurrent sets for the same key are
	// last-write-wins.
	Set(key string, value any)
	// Clear removes all entries.
	Clear()
	// Len returns the number of entries, including not-yet-evicted expired ones.
	Len() int
}

// Key returns the SHA-256 hex digest of the normalized query text. Identical
// research questions across runs share a cache slot regardless of domain.
func Key(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return fmt.Sprintf("%x", h)
}

type entry struct {
	value    any
	storedAt time.Time
}

// Memory is a mutex-guarded in-memory Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithNow sets a fixed clock for testing expiry.
func (m *Memory) WithNow(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(key string, ttl time.Duration) (any, bool) {
	if ttl <= 0 {
		return nil, false
	}

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if m.now().Sub(e.storedAt) > ttl {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, stillThere := m.entries[key]; stillThere && cur.storedAt.Equal(e.storedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	m.entries[key] = entry{value: value, storedAt: m.now()}
	m.mu.Unlock()
}

func (m *Memory) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Nop is a Cache that stores nothing. Useful for callers that want every
// query re-executed.
type Nop struct{}

// NewNop creates a no-op cache.
func NewNop() Nop { return Nop{} }

func (Nop) Get(string, time.Duration) (any, bool) { return nil, false }
func (Nop) Set(string, any)                       {}
func (Nop) Clear()                                {}
func (Nop) Len() int                              { return 0 }
