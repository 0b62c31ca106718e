package shortlink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultStoreTimeout = 3 * time.Second
	defaultCacheTimeout = 250 * time.Millisecond

	// generateAttempts bounds the retry loop on generated-code collisions.
	generateAttempts = 3
)

// Config holds service tuning knobs.
type Config struct {
	// StoreTimeout bounds every durable-store call.
	StoreTimeout time.Duration
	// CacheTimeout bounds every cache call.
	CacheTimeout time.Duration
}

// Service orchestrates creation and resolution of short links. It is
// stateless per request and safe for concurrent use; uniqueness under
// concurrent create is delegated to the Repository's atomic Insert.
type Service struct {
	store        Repository
	cache        Cache
	generator    *Generator
	logger       *zap.Logger
	storeTimeout time.Duration
	cacheTimeout time.Duration
	now          func() time.Time
}

// NewService creates a Service backed by the given store and cache.
func NewService(store Repository, cache Cache, generator *Generator, logger *zap.Logger, cfg Config) *Service {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}

	if cfg.CacheTimeout <= 0 {
		cfg.CacheTimeout = defaultCacheTimeout
	}

	return &Service{
		store:        store,
		cache:        cache,
		generator:    generator,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
		cacheTimeout: cfg.CacheTimeout,
		now:          time.Now,
	}
}

// CreateRequest carries the inputs for creating a short link.
type CreateRequest struct {
	TargetURL string
	// Code is the caller-supplied short code. Empty means generate one.
	Code Code
	// OwnerID is the creating account, nil for anonymous requests.
	OwnerID *uuid.UUID
	// ExpiresAt is the requested expiry, validated against the ownership
	// policy.
	ExpiresAt time.Time
}

// Create allocates a short link. A collision on a caller-supplied code is
// terminal (ErrCodeTaken); a collision on a generated code retries with a
// fresh code up to a small bound. Cache population is best-effort.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ShortLink, error) {
	if err := validateTarget(req.TargetURL); err != nil {
		return nil, err
	}

	now := s.now()

	expiresAt, err := EvaluateExpiry(req.OwnerID != nil, req.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	supplied := req.Code != ""

	attempts := generateAttempts
	if supplied {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		code := req.Code
		if !supplied {
			code = s.generator.NewCode()
		}

		link := &ShortLink{
			Code:      code,
			TargetURL: req.TargetURL,
			OwnerID:   req.OwnerID,
			CreatedAt: now,
			ExpiresAt: expiresAt,
		}

		err := s.insert(ctx, link)

		switch {
		case err == nil:
			s.cacheSet(ctx, link)

			return link, nil
		case errors.Is(err, ErrCodeTaken):
			if supplied {
				return nil, err
			}

			s.logger.Warn("generated code collision",
				zap.String("code", string(code)),
				zap.Int("attempt", attempt+1),
			)
		default:
			return nil, err
		}
	}

	return nil, fmt.Errorf("no free code after %d attempts: %w", generateAttempts, ErrCodeTaken)
}

// Resolve returns the target URL for a code. Cache hits return immediately;
// on a miss the durable store is consulted, expiry is checked, and the cache
// is repopulated. Expired links are indistinguishable from absent ones.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	if code == "" {
		return "", ErrNotFound
	}

	if target, err := s.cacheGet(ctx, code); err == nil {
		return target, nil
	}

	link, err := s.findByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if link.Expired(s.now()) {
		return "", ErrNotFound
	}

	s.cacheSet(ctx, link)

	return link.TargetURL, nil
}

func (s *Service) insert(ctx context.Context, link *ShortLink) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	err := s.store.Insert(ctx, link)
	if err != nil && !errors.Is(err, ErrCodeTaken) {
		s.logger.Error("store insert failed",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)

		return ErrUnavailable
	}

	return err
}

func (s *Service) findByCode(ctx context.Context, code Code) (*ShortLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		s.logger.Error("store lookup failed",
			zap.String("code", string(code)),
			zap.Error(err),
		)

		return nil, ErrUnavailable
	}

	return link, nil
}

func (s *Service) cacheGet(ctx context.Context, code Code) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	target, err := s.cache.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("cache read degraded, falling back to store",
				zap.String("code", string(code)),
				zap.Error(err),
			)
		}

		return "", err
	}

	return target, nil
}

// cacheSet populates the cache with a TTL matching the link's remaining
// lifetime, so a cached entry can never outlive the durable record.
func (s *Service) cacheSet(ctx context.Context, link *ShortLink) {
	ttl := link.TTL(s.now())
	if ttl <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	if err := s.cache.Set(ctx, link.Code, link.TargetURL, ttl); err != nil {
		s.logger.Warn("cache write degraded",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)
	}
}

// validateTarget checks that the target is an absolute http(s) URL. The URL
// is otherwise stored verbatim, without normalization.
func validateTarget(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: must be an absolute http or https url", ErrInvalidTarget)
	}

	return nil
}
