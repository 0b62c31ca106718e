package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlink-go/internal/shortlink"
)

// MemoryStore is an in-memory implementation of shortlink.Repository with
// the same semantics as the PostgreSQL store: atomic insert, live-code
// uniqueness, expired-code reclamation. Used by unit tests and as the
// fallback when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[shortlink.Code]shortlink.ShortLink
}

// NewMemoryStore creates a new in-memory short link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[shortlink.Code]shortlink.ShortLink),
	}
}

func (m *MemoryStore) Insert(_ context.Context, link *shortlink.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.links[link.Code]; ok && !existing.Expired(link.CreatedAt) {
		return shortlink.ErrCodeTaken
	}

	m.links[link.Code] = *link

	return nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortlink.ErrNotFound
	}

	return &link, nil
}

// Compile-time check.
var _ shortlink.Repository = (*MemoryStore)(nil)
