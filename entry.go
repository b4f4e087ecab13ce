// Package strict is a goflash distribution built around request URI
// validation: a small router plus the StrictURI middleware, which rejects
// request targets corrupted by stray bytes and proposes a repaired prefix.
package strict

import (
	"github.com/goflash/strict/app"
	"github.com/goflash/strict/core"
	"github.com/goflash/strict/ctx"
)

// App is the main application/router. Implements http.Handler. Re-exported from app.App.
type App = app.App

// Handler is the function signature for goflash route handlers and middleware (after composition).
type Handler = app.Handler

// Middleware transforms a Handler. Re-exported from app.Middleware.
type Middleware = app.Middleware

// ErrorHandler handles errors returned from handlers. Re-exported from app.ErrorHandler.
type ErrorHandler = app.ErrorHandler

// Ctx is the request context, re-exported for convenience.
type Ctx = ctx.Ctx

// Outcome is the result of validating a request URI. Re-exported from core.Outcome.
type Outcome = core.Outcome

// New creates a new App with sensible defaults. Re-exported from app.New.
func New() App { return app.New() }

// ValidateAndRepair validates the URI assembled from prefix, path and query
// and, when it is invalid, proposes its longest parseable prefix.
func ValidateAndRepair(prefix, path, query []byte) Outcome {
	return core.ValidateAndRepair(prefix, path, query)
}
