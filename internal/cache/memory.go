package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/cloo-solutions/plantrec/internal/metrics"
)

// DefaultMaxEntries bounds the in-memory backend when no capacity is given.
const DefaultMaxEntries = 1000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryBackend is a process-local Backend. Once more than maxEntries keys
// are stored, the oldest half (by insertion) is evicted.
type MemoryBackend struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	order      []string
	maxEntries int
	now        func() time.Time
}

// NewMemoryBackend creates a MemoryBackend. maxEntries <= 0 uses DefaultMaxEntries.
func NewMemoryBackend(maxEntries int) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryBackend{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.now()) {
		m.removeLocked(key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	if _, exists := m.entries[key]; exists {
		m.removeLocked(key)
	}
	m.entries[key] = e
	m.order = append(m.order, key)

	if len(m.entries) > m.maxEntries {
		m.evictOldestHalfLocked()
	}
	metrics.CacheEntries.Set(float64(len(m.entries)))
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(key)
	return nil
}

func (m *MemoryBackend) DeletePattern(_ context.Context, pattern string) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.order[:0]
	removed := 0
	for _, key := range m.order {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	m.order = kept
	metrics.CacheEntries.Set(float64(len(m.entries)))
	return removed, nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryBackend) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := m.order[:0]
	removed := 0
	for _, key := range m.order {
		if m.entries[key].expired(now) {
			delete(m.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	m.order = kept
	metrics.CacheEntries.Set(float64(len(m.entries)))
	return removed
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryBackend) removeLocked(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *MemoryBackend) evictOldestHalfLocked() {
	n := len(m.order) / 2
	for _, key := range m.order[:n] {
		delete(m.entries, key)
	}
	m.order = append([]string(nil), m.order[n:]...)
	metrics.CacheEvictions.Add(float64(n))
}
