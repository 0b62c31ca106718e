package shortlink

import (
	"fmt"
	"time"
)

// Lifetime ceilings by ownership. Anonymous links are short-lived; owned
// links may last up to thirty days.
const (
	AnonymousMaxLifetime = 24 * time.Hour
	OwnedMaxLifetime     = 30 * 24 * time.Hour
)

// MaxLifetime returns the lifetime ceiling for a link with the given
// ownership.
func MaxLifetime(owned bool) time.Duration {
	if owned {
		return OwnedMaxLifetime
	}

	return AnonymousMaxLifetime
}

// EvaluateExpiry decides whether a requested expiry is acceptable for a link
// with the given ownership and returns the effective expiry. It is a pure
// function: no I/O, no clock access beyond the now argument.
func EvaluateExpiry(owned bool, requested, now time.Time) (time.Time, error) {
	if !requested.After(now) {
		return time.Time{}, fmt.Errorf("%w: expiry must be in the future", ErrInvalidExpiry)
	}

	if limit := MaxLifetime(owned); requested.Sub(now) > limit {
		return time.Time{}, fmt.Errorf("%w: expiry exceeds maximum lifetime of %s", ErrInvalidExpiry, limit)
	}

	return requested, nil
}
