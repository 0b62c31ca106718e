package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlink-go/internal/shortlink"
)

type memoryCacheEntry struct {
	targetURL string
	expiresAt time.Time
}

// MemoryCache is an in-process implementation of shortlink.Cache. Entry
// expiry is checked on read rather than by a sweeper, matching the passive
// expiry of the rest of the system.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[shortlink.Code]memoryCacheEntry
}

// NewMemoryCache creates a new in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[shortlink.Code]memoryCacheEntry),
	}
}

func (m *MemoryCache) Get(_ context.Context, code shortlink.Code) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[code]
	m.mu.RUnlock()

	if !ok {
		return "", shortlink.ErrNotFound
	}

	if !time.Now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, code)
		m.mu.Unlock()

		return "", shortlink.ErrNotFound
	}

	return entry.targetURL, nil
}

func (m *MemoryCache) Set(_ context.Context, code shortlink.Code, targetURL string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[code] = memoryCacheEntry{
		targetURL: targetURL,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Compile-time check.
var _ shortlink.Cache = (*MemoryCache)(nil)
