package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned by verifiers for unknown or malformed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Account identifies an authenticated user. It is the only thing the core
// needs from the external auth layer.
type Account struct {
	ID uuid.UUID
}

// TokenVerifier resolves a bearer token into an account. The production
// implementation (JWT verification, session lookup) lives outside this
// service; anything satisfying this interface can be plugged in.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Account, error)
}

type accountKey struct{}

// ContextWithAccount adds the authenticated account to the context.
func ContextWithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext extracts the authenticated account from the context,
// nil when the request is anonymous.
func AccountFromContext(ctx context.Context) *Account {
	if v, ok := ctx.Value(accountKey{}).(*Account); ok {
		return v
	}

	return nil
}

// StaticTokenVerifier verifies tokens against a fixed token → account map.
// Intended for development and tests.
type StaticTokenVerifier struct {
	accounts map[string]Account
}

// NewStaticTokenVerifier creates a verifier over a fixed set of tokens.
func NewStaticTokenVerifier(accounts map[string]Account) *StaticTokenVerifier {
	return &StaticTokenVerifier{accounts: accounts}
}

func (v *StaticTokenVerifier) Verify(_ context.Context, token string) (*Account, error) {
	account, ok := v.accounts[token]
	if !ok {
		return nil, ErrInvalidToken
	}

	return &account, nil
}
