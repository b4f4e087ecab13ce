package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/goflash/strict"
	"github.com/goflash/strict/ctx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecoverConfig configures the panic recovery middleware.
//
// EnableStack adds the goroutine stack to the log record. OnPanic replaces the
// default log record. ErrorResponse replaces the default 500 response.
type RecoverConfig struct {
	EnableStack   bool
	OnPanic       func(strict.Ctx, any)
	ErrorResponse func(strict.Ctx, any) error
}

// Recover returns middleware that turns a panic further down the chain into a
// 500 response. The panic is logged and recorded on the active span; the
// client only sees the status text.
//
// In app.Pre it also covers routed handlers and the router itself:
//
//	a.Pre(middleware.RequestID(), middleware.Logger(), middleware.Recover(), middleware.StrictURI())
func Recover(cfgs ...RecoverConfig) strict.Middleware {
	cfg := RecoverConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	return func(next strict.Handler) strict.Handler {
		return func(c strict.Ctx) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				span := trace.SpanFromContext(c.Context())
				span.RecordError(fmt.Errorf("panic: %v", r))
				span.SetStatus(codes.Error, "panic")

				if cfg.OnPanic != nil {
					cfg.OnPanic(c, r)
				} else {
					attrs := []any{
						"panic", fmt.Sprint(r),
						"method", c.Method(),
						"path", strings.ToValidUTF8(c.Path(), "?"),
					}
					if rid, ok := RequestIDFromContext(c.Context()); ok {
						attrs = append(attrs, "request_id", rid)
					}
					if cfg.EnableStack {
						attrs = append(attrs, "stack", string(debug.Stack()))
					}
					ctx.LoggerFromContext(c.Context()).Error("panic recovered", attrs...)
				}

				if cfg.ErrorResponse != nil {
					err = cfg.ErrorResponse(c, r)
					return
				}
				if c.WroteHeader() {
					return
				}
				c.Header("X-Content-Type-Options", "nosniff")
				err = c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}()
			return next(c)
		}
	}
}
