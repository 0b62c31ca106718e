package auth

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// Middleware returns a Huma middleware that resolves the Authorization
// header into an account on the request context. Requests without a valid
// bearer token proceed anonymously; endpoints that require an account check
// for one themselves.
func Middleware(verifier TokenVerifier, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := bearerToken(ctx.Header("Authorization"))
		if token == "" {
			next(ctx)

			return
		}

		account, err := verifier.Verify(ctx.Context(), token)
		if err != nil {
			logger.Debug("token verification failed, continuing anonymously", zap.Error(err))
			next(ctx)

			return
		}

		newCtx := ContextWithAccount(ctx.Context(), account)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
