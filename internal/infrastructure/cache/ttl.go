package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLMap is a concurrency-safe map whose entries are valid while
// now - storedAt < ttl. Stale entries are reported as absent and stay in the
// map until overwritten.
type TTLMap[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     Clock
}

func NewTTLMap[K comparable, V any](ttl time.Duration, clock Clock) *TTLMap[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTLMap[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     clock,
	}
}

func (m *TTLMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.now().Sub(e.storedAt) >= m.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *TTLMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	m.entries[key] = entry[V]{value: value, storedAt: m.now()}
	m.mu.Unlock()
}

// Len counts stored entries, stale ones included.
func (m *TTLMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
