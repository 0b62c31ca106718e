package shortlink

import (
	"context"
	"time"
)

// Repository is the durable, authoritative store for short links.
type Repository interface {
	// FindByCode returns the link holding the code, expired or not.
	// Returns ErrNotFound when no row exists.
	FindByCode(ctx context.Context, code Code) (*ShortLink, error)

	// Insert atomically claims the code for the link. When the code is held
	// by a live link it returns ErrCodeTaken; a code held only by an expired
	// link is reclaimed. Two concurrent inserts racing on the same code must
	// resolve to exactly one success.
	Insert(ctx context.Context, link *ShortLink) error
}

// Cache is the volatile fast path in front of the Repository. It is
// best-effort: callers must treat any error as a miss, never as a failure
// of the operation.
type Cache interface {
	// Get returns the cached target URL for the code, ErrNotFound on miss.
	Get(ctx context.Context, code Code) (string, error)

	// Set caches the target URL for the code with the given TTL.
	// Implementations ignore non-positive TTLs.
	Set(ctx context.Context, code Code, targetURL string, ttl time.Duration) error
}
