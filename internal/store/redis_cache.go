package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink-go/internal/shortlink"
)

// RedisCache is a Redis implementation of shortlink.Cache. Entries carry a
// TTL matching the link's remaining lifetime, so Redis evicts them no later
// than the durable record expires.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis-backed fast-path cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "link:",
	}
}

func (r *RedisCache) Get(ctx context.Context, code shortlink.Code) (string, error) {
	target, err := r.client.Get(ctx, r.prefix+string(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortlink.ErrNotFound
		}

		return "", err
	}

	return target, nil
}

func (r *RedisCache) Set(ctx context.Context, code shortlink.Code, targetURL string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return r.client.Set(ctx, r.prefix+string(code), targetURL, ttl).Err()
}

// Shutdown closes the underlying Redis client.
func (r *RedisCache) Shutdown() error {
	return r.client.Close()
}

// Compile-time check.
var _ shortlink.Cache = (*RedisCache)(nil)
