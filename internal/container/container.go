package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink-go/internal/auth"
	"github.com/serroba/shortlink-go/internal/handlers"
	"github.com/serroba/shortlink-go/internal/middleware"
	"github.com/serroba/shortlink-go/internal/ratelimit"
	"github.com/serroba/shortlink-go/internal/shortlink"
	"github.com/serroba/shortlink-go/internal/store"
	"go.uber.org/zap"
)

// Options holds all runtime configuration, bound by humacli from flags and
// environment variables.
type Options struct {
	Port              int    `default:"8888" help:"Port to listen on"                                                  short:"p"`
	BaseURL           string `default:""     help:"Public base URL for short links; defaults to http://localhost:PORT"`
	DatabaseURL       string `default:""     help:"PostgreSQL connection string; empty runs the in-memory store"`
	RedisAddr         string `default:""     help:"Redis server address; empty runs the in-process cache"              short:"r"`
	CodeLength        int    `default:"7"    help:"Length of generated short codes"                                    short:"c"`
	StoreTimeoutMS    int    `default:"3000" help:"Durable store call timeout in milliseconds"`
	CacheTimeoutMS    int    `default:"250"  help:"Cache call timeout in milliseconds"`
	AuthTokens        string `default:""     help:"Comma-separated token=accountID pairs for the static verifier"`
	RateLimitDisabled bool   `default:"false" help:"Disable rate limiting"`
}

func (o *Options) baseURL() string {
	if o.BaseURL != "" {
		return strings.TrimSuffix(o.BaseURL, "/")
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the application logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*zap.Logger, error) {
		return zap.NewProduction()
	})
}

// RedisPackage provides the shared Redis client. Only invoked when a Redis
// address is configured.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)
		if options.RedisAddr == "" {
			return nil, fmt.Errorf("redis address not configured")
		}

		client := redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		})

		return client, nil
	})
}

// PostgresPackage provides the connection pool. Only invoked when a database
// URL is configured.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)
		if options.DatabaseURL == "" {
			return nil, fmt.Errorf("database url not configured")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		return pool, nil
	})
}

// RepositoryPackage provides the durable short link store: PostgreSQL when
// configured, the in-memory store otherwise.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortlink.Repository, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if options.DatabaseURL == "" {
			logger.Warn("no database configured, short links will not survive restarts")

			return store.NewMemoryStore(), nil
		}

		pool, err := do.Invoke[*pgxpool.Pool](i)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(pool), nil
	})
}

// CachePackage provides the fast-path cache: Redis when configured, an
// in-process cache otherwise.
func CachePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortlink.Cache, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return store.NewMemoryCache(), nil
		}

		client, err := do.Invoke[*redis.Client](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisCache(client), nil
	})
}

// RateLimitPackage provides the rate limit store, shared across endpoints.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return store.NewRateLimitMemoryStore(), nil
		}

		client, err := do.Invoke[*redis.Client](i)
		if err != nil {
			return nil, err
		}

		return store.NewRateLimitRedisStore(client), nil
	})
}

// AuthPackage provides the token verifier boundary. The static verifier is
// a stand-in for the external auth service.
func AuthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (auth.TokenVerifier, error) {
		options := do.MustInvoke[*Options](i)

		accounts, err := parseAuthTokens(options.AuthTokens)
		if err != nil {
			return nil, err
		}

		return auth.NewStaticTokenVerifier(accounts), nil
	})
}

// ServicePackage provides the code generator and resolution service.
func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortlink.Generator, error) {
		options := do.MustInvoke[*Options](i)

		return shortlink.NewGenerator(options.CodeLength)
	})

	do.Provide(injector, func(i *do.Injector) (*shortlink.Service, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := do.Invoke[shortlink.Repository](i)
		if err != nil {
			return nil, err
		}

		cache, err := do.Invoke[shortlink.Cache](i)
		if err != nil {
			return nil, err
		}

		generator, err := do.Invoke[*shortlink.Generator](i)
		if err != nil {
			return nil, err
		}

		return shortlink.NewService(repo, cache, generator, logger, shortlink.Config{
			StoreTimeout: time.Duration(options.StoreTimeoutMS) * time.Millisecond,
			CacheTimeout: time.Duration(options.CacheTimeoutMS) * time.Millisecond,
		}), nil
	})
}

// HTTPPackage provides the router and the API with all middlewares and
// routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		service, err := do.Invoke[*shortlink.Service](i)
		if err != nil {
			return nil, err
		}

		verifier, err := do.Invoke[auth.TokenVerifier](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("Short Link Service", "1.0.0"))

		api.UseMiddleware(auth.Middleware(verifier, logger))

		if !options.RateLimitDisabled {
			limitStore, err := do.Invoke[ratelimit.Store](i)
			if err != nil {
				return nil, err
			}

			fallback := ratelimit.NewSlidingWindowLimiter(limitStore, 100, time.Minute)
			api.UseMiddleware(middleware.RateLimiter(api, limitStore, fallback, logger))
		}

		linkHandler := handlers.NewShortLinkHandler(service, options.baseURL(), logger)
		healthHandler := handlers.NewHealthHandler(healthCheckers(i, options))

		handlers.RegisterRoutes(api, linkHandler, healthHandler)

		return api, nil
	})
}

func healthCheckers(i *do.Injector, options *Options) (database, cache handlers.Checker) {
	if options.DatabaseURL != "" {
		if pool, err := do.Invoke[*pgxpool.Pool](i); err == nil {
			database = handlers.NewPostgresChecker(pool)
		}
	}

	if options.RedisAddr != "" {
		if client, err := do.Invoke[*redis.Client](i); err == nil {
			cache = handlers.NewRedisChecker(client)
		}
	}

	return database, cache
}

// parseAuthTokens parses "token=accountID" pairs separated by commas.
func parseAuthTokens(raw string) (map[string]auth.Account, error) {
	accounts := make(map[string]auth.Account)

	if raw == "" {
		return accounts, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		token, id, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || token == "" {
			return nil, fmt.Errorf("malformed auth token pair %q", pair)
		}

		accountID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("malformed account id in pair %q: %w", pair, err)
		}

		accounts[token] = auth.Account{ID: accountID}
	}

	return accounts, nil
}
