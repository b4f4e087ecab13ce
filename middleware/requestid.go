package middleware

import (
	"context"

	"github.com/goflash/strict"
	"github.com/google/uuid"
)

// RequestIDConfig configures the RequestID middleware.
// Header sets the request/response header name (default: X-Request-ID).
type RequestIDConfig struct {
	Header string // header name, default: X-Request-ID
}

type ridKey struct{}

// RequestID returns middleware that adds a request ID to each request/response.
// An incoming ID in the configured header is reused when it is a single
// printable ASCII token; otherwise a random UUID is generated. The ID is
// echoed in the response header and stored in the request context, where
// Logger and StrictURI pick it up.
func RequestID(cfgs ...RequestIDConfig) strict.Middleware {
	cfg := RequestIDConfig{Header: "X-Request-ID"}
	if len(cfgs) > 0 && cfgs[0].Header != "" {
		cfg.Header = cfgs[0].Header
	}
	return func(next strict.Handler) strict.Handler {
		return func(c strict.Ctx) error {
			id := c.Request().Header.Get(cfg.Header)
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			c.Header(cfg.Header, id)
			c.SetRequest(c.Request().WithContext(context.WithValue(c.Context(), ridKey{}, id)))
			return next(c)
		}
	}
}

// RequestIDFromContext returns the request ID from the context, if available.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ridKey{}).(string)
	return s, ok
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
