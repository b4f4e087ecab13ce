package app

import (
	"net/http"
	"strings"

	"github.com/goflash/strict/ctx"
)

// defaultErrorHandler logs the failure and answers 500 unless the handler
// already started the response; in that case only the log record is left.
// The path is logged with invalid UTF-8 replaced, since pre-routing chains
// can reach here with a target StrictURI has not rewritten yet.
func defaultErrorHandler(c ctx.Ctx, err error) {
	l := ctx.LoggerFromContext(c.Context())
	attrs := []any{
		"err", err,
		"method", c.Method(),
		"path", strings.ToValidUTF8(c.Path(), "?"),
		"route", c.Route(),
	}
	if c.WroteHeader() {
		l.Warn("handler failed after response started", append(attrs, "status", c.StatusCode())...)
		return
	}
	l.Error("handler failed", attrs...)
	_ = c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// methodNotAllowedHandler answers 405 in plain text. The router has already
// set the Allow header.
func methodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(http.StatusText(http.StatusMethodNotAllowed)))
	})
}
