package middleware

import (
	"net/http"
	"time"

	"github.com/goflash/strict"
	"github.com/goflash/strict/ctx"
)

// Logger returns middleware that logs each request using slog, including method, path, status, duration, remote address, and user agent.
// The logger is taken from the request context. Requests rejected by StrictURI
// carry invalid_uri=true and the proposed fix; their path is the rewritten
// error path, never the corrupted original.
func Logger() strict.Middleware {
	return func(next strict.Handler) strict.Handler {
		return func(c strict.Ctx) error {
			start := time.Now()
			err := next(c)
			dur := time.Since(start)

			status := c.StatusCode()
			if status == 0 {
				status = http.StatusOK
			}

			ua, remote := "", ""
			if r := c.Request(); r != nil {
				ua = r.UserAgent()
				remote = r.RemoteAddr
			}

			l := ctx.LoggerFromContext(c.Context())

			attrs := []any{
				"method", c.Method(),
				"path", c.Path(),
				"route", c.Route(),
				"status", status,
				"duration_ms", float64(dur.Microseconds()) / 1000.0,
				"remote", remote,
				"user_agent", ua,
			}

			if rid, ok := RequestIDFromContext(c.Context()); ok {
				attrs = append(attrs, "request_id", rid)
			}
			if bad, ok := InvalidURIFromContext(c.Context()); ok {
				attrs = append(attrs, "invalid_uri", true, "proposed_uri", string(bad.ProposedFix))
			}

			l.Info("request", attrs...)
			return err
		}
	}
}
