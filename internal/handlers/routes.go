package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink-go/internal/ratelimit"
)

// RegisterRoutes registers all routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, links *ShortLinkHandler, health *HealthHandler) {
	// POST /api/short - Create short link
	// Stricter limits for write operations
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/short",
		Summary:     "Create short link",
		Description: "Creates a short link. Authenticated requests may supply a custom code and longer expiries.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, links.Shorten)

	// POST /api/candidate/short/customize - Claim a custom code (authenticated)
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/candidate/short/customize",
		Summary:     "Customize short link",
		Description: "Claims a caller-chosen short code for the authenticated account.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, links.Customize)

	// GET /{code} - Redirect to target URL
	// Relaxed limits for the high-traffic read path
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to target URL",
		Description: "Redirects to the URL behind the short code. Expired codes report not found.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, links.Redirect)

	// GET /api/candidate/{shortUrl} - API-prefixed resolve alias
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/candidate/{shortUrl}",
		Summary:     "Resolve short link",
		Description: "Redirects to the URL behind the short code.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, links.RedirectCandidate)

	// GET /health - Health check, exempt from rate limiting
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"System"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, health.Check)
}
