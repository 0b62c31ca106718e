package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/shortlink-go/internal/auth"
	"github.com/serroba/shortlink-go/internal/shortlink"
	"go.uber.org/zap"
)

// ShortLinkHandler handles short link creation and resolution.
type ShortLinkHandler struct {
	service *shortlink.Service
	baseURL string
	logger  *zap.Logger
}

// NewShortLinkHandler creates a new short link handler.
func NewShortLinkHandler(service *shortlink.Service, baseURL string, logger *zap.Logger) *ShortLinkHandler {
	return &ShortLinkHandler{
		service: service,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Shorten creates a short link. Authenticated requests own the link and may
// request expiries up to the owned ceiling; anonymous requests are capped at
// the anonymous ceiling.
func (h *ShortLinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.service.Create(ctx, shortlink.CreateRequest{
		TargetURL: req.Body.LongURL,
		Code:      shortlink.Code(req.Body.ShortURL),
		OwnerID:   ownerID(ctx),
		ExpiresAt: req.Body.ExpiryTime,
	})
	if err != nil {
		return nil, h.createError(err, req.Body.ShortURL != "")
	}

	resp := &ShortenResponse{}
	resp.Headers.Location = fmt.Sprintf("%s/%s", h.baseURL, link.Code)
	resp.Body.Success = true
	resp.Body.Message = "The short url created successfully"
	resp.Body.ShortURL = string(link.Code)

	return resp, nil
}

// Customize claims a caller-chosen code for an authenticated account. The
// request body carries no expiry; the owned-link ceiling applies.
func (h *ShortLinkHandler) Customize(ctx context.Context, req *CustomizeRequest) (*ShortenResponse, error) {
	account := auth.AccountFromContext(ctx)
	if account == nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	if req.Body.ShortURL == "" {
		return nil, huma.Error400BadRequest("shortUrl must not be empty")
	}

	link, err := h.service.Create(ctx, shortlink.CreateRequest{
		TargetURL: req.Body.LongURL,
		Code:      shortlink.Code(req.Body.ShortURL),
		OwnerID:   &account.ID,
		ExpiresAt: time.Now().Add(shortlink.OwnedMaxLifetime),
	})
	if err != nil {
		// Collisions on this endpoint surface as 400, not 409
		if errors.Is(err, shortlink.ErrCodeTaken) {
			return nil, huma.Error400BadRequest("short url already taken")
		}

		return nil, h.createError(err, true)
	}

	resp := &ShortenResponse{}
	resp.Headers.Location = fmt.Sprintf("%s/%s", h.baseURL, link.Code)
	resp.Body.Success = true
	resp.Body.Message = "The short url customized successfully"
	resp.Body.ShortURL = string(link.Code)

	return resp, nil
}

// Redirect resolves a short code and issues a temporary redirect. Expired
// codes are indistinguishable from absent ones.
func (h *ShortLinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	return h.redirect(ctx, shortlink.Code(req.Code))
}

// RedirectCandidate is the API-prefixed alias for Redirect.
func (h *ShortLinkHandler) RedirectCandidate(ctx context.Context, req *CandidateRedirectRequest) (*RedirectResponse, error) {
	return h.redirect(ctx, shortlink.Code(req.ShortURL))
}

func (h *ShortLinkHandler) redirect(ctx context.Context, code shortlink.Code) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, shortlink.ErrNotFound):
			return nil, huma.Error404NotFound("Url not found")
		case errors.Is(err, shortlink.ErrUnavailable):
			return nil, huma.Error503ServiceUnavailable("service unavailable")
		default:
			return nil, huma.Error500InternalServerError("failed to resolve url")
		}
	}

	resp := &RedirectResponse{
		Status: http.StatusFound,
	}
	resp.Headers.Location = target

	return resp, nil
}

func (h *ShortLinkHandler) createError(err error, codeSupplied bool) error {
	switch {
	case errors.Is(err, shortlink.ErrInvalidExpiry),
		errors.Is(err, shortlink.ErrInvalidTarget):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortlink.ErrCodeTaken):
		if codeSupplied {
			return huma.Error409Conflict("short url already taken")
		}

		// Exhausted generation attempts; not the caller's fault
		h.logger.Error("code generation exhausted", zap.Error(err))

		return huma.Error500InternalServerError("failed to allocate a short code")
	case errors.Is(err, shortlink.ErrUnavailable):
		return huma.Error503ServiceUnavailable("service unavailable")
	default:
		return huma.Error500InternalServerError("failed to create short link")
	}
}

func ownerID(ctx context.Context) *uuid.UUID {
	if account := auth.AccountFromContext(ctx); account != nil {
		return &account.ID
	}

	return nil
}
