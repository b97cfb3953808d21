// Package cache provides the response cache backends behind ports.Cache:
// an in-process memory cache for single-binary use and a Redis cache for
// deployments where several clients should share warm entries.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is a TTL map cache. Expired entries are dropped lazily on read
// and swept opportunistically on write.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an empty memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	m.sweepLocked()
	return nil
}

// Get returns nil for a missing or expired key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if m.expiredLocked(entry) {
		delete(m.entries, key)
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	delete(m.entries, key)
	return !m.expiredLocked(entry), nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, entry := range m.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		live := !m.expiredLocked(entry)
		delete(m.entries, key)
		if live {
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.entries)
}

func (m *Memory) expiredLocked(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt)
}

func (m *Memory) sweepLocked() {
	for key, entry := range m.entries {
		if m.expiredLocked(entry) {
			delete(m.entries, key)
		}
	}
}
