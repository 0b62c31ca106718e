package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink-go/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware that enforces sliding-window rate
// limits keyed on client IP and User-Agent. Per-endpoint limits come from
// operation metadata (ratelimit.MetadataKey); operations without metadata
// fall back to the provided limiter.
func RateLimiter(
	api huma.API,
	store ratelimit.Store,
	fallback ratelimit.Limiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil {
			if cfg.Disabled {
				next(ctx)

				return
			}

			if len(cfg.Limits) > 0 {
				if !checkLimits(api, ctx, store, cfg.Limits, logger) {
					return
				}

				next(ctx)

				return
			}
		}

		path := operationPath(ctx)
		key := clientKey(ctx) + ":" + path

		allowed, err := fallback.Allow(ctx.Context(), key)
		if err != nil {
			// A broken limit store must not take the service down
			logger.Error("rate limit check failed",
				zap.String("path", path),
				zap.Error(err),
			)

			next(ctx)

			return
		}

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.String("method", ctx.Method()),
				zap.String("client_ip", clientIP(ctx)),
			)

			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// checkLimits records the request against every configured window.
// Returns true if the request is allowed, false if it was rejected.
//
// The rate limit key uses the operation's route template (e.g. "/{code}"),
// so all requests matching a route share counters per client regardless of
// path values.
func checkLimits(
	api huma.API,
	ctx huma.Context,
	store ratelimit.Store,
	limits []ratelimit.LimitConfig,
	logger *zap.Logger,
) bool {
	clientK := clientKey(ctx)
	path := operationPath(ctx)

	for _, limit := range limits {
		key := fmt.Sprintf("%s:%s:%d", clientK, path, limit.Window.Milliseconds())

		count, err := store.Record(ctx.Context(), key, limit.Window)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("path", path),
				zap.Error(err),
			)

			// A broken limit store must not take the service down
			return true
		}

		if count > limit.Max {
			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.String("method", ctx.Method()),
				zap.Int64("count", count),
				zap.Int64("max", limit.Max),
				zap.Duration("window", limit.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
				count, limit.Max, limit.Window)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return false
		}
	}

	return true
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(ctx huma.Context) string {
	ip := clientIP(ctx)
	ua := ctx.Header("User-Agent")

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	// X-Forwarded-For may contain multiple IPs; the first is the client
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
