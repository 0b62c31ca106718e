package shortlink

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Code represents a short link code.
type Code string

// ShortLink represents a short code mapped to a target URL.
type ShortLink struct {
	Code      Code
	TargetURL string
	OwnerID   *uuid.UUID // nil for anonymous links
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Errors returned by the resolution core. Handlers map these to HTTP
// status codes; everything else is treated as an internal failure.
var (
	ErrNotFound      = errors.New("short link not found")
	ErrCodeTaken     = errors.New("short code already taken")
	ErrInvalidExpiry = errors.New("invalid expiry")
	ErrInvalidTarget = errors.New("invalid target url")
	ErrUnavailable   = errors.New("short link store unavailable")
)

// Owned reports whether the link belongs to an account.
func (l *ShortLink) Owned() bool {
	return l.OwnerID != nil
}

// Expired reports whether the link is past its expiry at the given instant.
// Expiry is enforced at read time; expired rows are never actively swept.
func (l *ShortLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// TTL returns the remaining lifetime of the link, zero or negative when
// already expired.
func (l *ShortLink) TTL(now time.Time) time.Duration {
	return l.ExpiresAt.Sub(now)
}
