package handlers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for checking a dependency's health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PostgresChecker adapts pgxpool.Pool to Checker.
type PostgresChecker struct {
	pool *pgxpool.Pool
}

// NewPostgresChecker creates a new PostgreSQL health checker.
func NewPostgresChecker(pool *pgxpool.Pool) *PostgresChecker {
	return &PostgresChecker{pool: pool}
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresChecker) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// HealthHandler handles health check operations. Either checker may be nil
// when the corresponding backend is not configured (memory-backed runs).
type HealthHandler struct {
	database Checker
	cache    Checker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(database, cache Checker) *HealthHandler {
	return &HealthHandler{database: database, cache: cache}
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
		Database  string    `json:"database,omitempty"`
		Cache     string    `json:"cache,omitempty"`
	}
}

// Check reports the health of the service and its backends.
func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Success = true
	resp.Body.Message = "Server is running"
	resp.Body.Timestamp = time.Now().UTC()

	if h.database != nil {
		resp.Body.Database = statusOf(h.database.Ping(ctx))
		if resp.Body.Database == statusUnhealthy {
			resp.Body.Message = "Server is degraded"
		}
	}

	if h.cache != nil {
		resp.Body.Cache = statusOf(h.cache.Ping(ctx))
		if resp.Body.Cache == statusUnhealthy {
			resp.Body.Message = "Server is degraded"
		}
	}

	return resp, nil
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

func statusOf(err error) string {
	if err != nil {
		return statusUnhealthy
	}

	return statusHealthy
}
