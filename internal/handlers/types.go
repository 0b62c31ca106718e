package handlers

import "time"

// ShortenRequest is the request body for creating a short link.
type ShortenRequest struct {
	Body struct {
		LongURL    string    `doc:"The URL to shorten"                           example:"https://example.com/very/long/path" json:"longUrl"`
		ShortURL   string    `doc:"Custom short code (optional)"                 example:"mycode"                             json:"shortUrl,omitempty" required:"false"`
		ExpiryTime time.Time `doc:"When the link expires (RFC 3339)"             example:"2026-01-02T15:04:05Z"               json:"expiryTime"`
	}
}

// ShortenResponse is the response for a successfully created short link.
type ShortenResponse struct {
	Headers struct {
		Location string `doc:"The full short URL" header:"Location"`
	}
	Body struct {
		Success  bool   `doc:"Whether the request succeeded" json:"success"`
		Message  string `doc:"Human-readable outcome"        json:"message"`
		ShortURL string `doc:"The assigned short code"       example:"a1B2c3d" json:"shortUrl"`
	}
}

// CustomizeRequest is the request body for claiming a custom short code.
type CustomizeRequest struct {
	Body struct {
		ShortURL string `doc:"The custom short code to claim" example:"mycode"                  json:"shortUrl"`
		LongURL  string `doc:"The URL the code redirects to"  example:"https://example.com/cv"  json:"longUrl"`
	}
}

// RedirectRequest is the request for resolving a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"a1B2c3d" path:"code"`
}

// CandidateRedirectRequest is the request for the API-prefixed resolve alias.
type CandidateRedirectRequest struct {
	ShortURL string `doc:"The short code" example:"a1B2c3d" path:"shortUrl"`
}

// RedirectResponse redirects the client to the target URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The target URL" header:"Location"`
	}
}
