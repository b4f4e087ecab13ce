package app

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/goflash/strict/ctx"
	"github.com/julienschmidt/httprouter"
)

// Handler is the function signature for goflash route handlers (and the output
// of composed middleware). It receives a request context and returns an error.
//
// Returning a non-nil error delegates to the App's ErrorHandler.
type Handler func(ctx.Ctx) error

// Middleware transforms a Handler, enabling composition of cross-cutting
// concerns such as logging, request ids or request URI validation.
//
// Middleware registered via Use is applied in the order added; route-specific
// middleware is applied after global middleware and before the route handler.
// A middleware can decide to short-circuit by returning without calling next.
//
// Example (reject requests without a tenant header):
//
//	func RequireTenant(next app.Handler) app.Handler {
//		return func(c app.Ctx) error {
//			if c.Request().Header.Get("X-Tenant") == "" {
//				return c.BadRequest("missing tenant")
//			}
//			return next(c)
//		}
//	}
type Middleware func(Handler) Handler

// ErrorHandler handles errors returned from handlers.
// Implementations should translate the error into an HTTP response and log it.
type ErrorHandler func(ctx.Ctx, error)

// Ctx is re-exported for package-local convenience in tests and internal APIs.
type Ctx = ctx.Ctx

// DefaultApp is the main application/router. It implements http.Handler and
// manages routing, pre-routing and route middleware, error handling and
// logger configuration.
//
// A sync.Pool is used for context reuse; each request (and each pre-routing
// pass) acquires a ctx.DefaultContext and returns it after completion.
type DefaultApp struct {
	router     *httprouter.Router // underlying router
	middleware []Middleware       // global route middleware
	pre        []Middleware       // pre-routing middleware
	preChain   Handler            // composed pre-routing chain, nil without Pre
	pool       sync.Pool          // context pooling for allocation reduction
	OnError    ErrorHandler       // error handler
	NotFound   http.Handler       // handler for 404 Not Found
	MethodNA   http.Handler       // handler for 405 Method Not Allowed
	logger     *slog.Logger       // application logger
}

// New creates a new DefaultApp with sensible defaults and returns it as the App
// interface.
//
// Defaults include:
//   - JSON slog logger at info level to stdout
//   - 404 and 405 handlers wired to the internal router hooks
//   - Context pooling
//
// Example:
//
//	a := app.New()
//	a.Pre(middleware.StrictURI())
//	a.GET("/items/:id", showItem)
//	_ = http.ListenAndServe(":8080", a)
func New() App {
	app := &DefaultApp{
		router: httprouter.New(),
	}
	app.pool.New = func() any { return &ctx.DefaultContext{} }

	app.router.HandleMethodNotAllowed = true
	app.SetErrorHandler(defaultErrorHandler)
	app.SetNotFoundHandler(http.NotFoundHandler())
	app.SetMethodNotAllowedHandler(methodNotAllowedHandler())
	app.SetLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	app.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.NotFoundHandler().ServeHTTP(w, r)
	})
	app.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.MethodNotAllowedHandler().ServeHTTP(w, r)
	})

	return app
}

// SetLogger sets the application logger used by middlewares and utilities.
func (a *DefaultApp) SetLogger(l *slog.Logger) { a.logger = l }

// Logger returns the configured application logger, or slog.Default if none is set.
func (a *DefaultApp) Logger() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

// Use registers global route middleware, applied to all routes registered
// afterwards in the order added.
func (a *DefaultApp) Use(mw ...Middleware) {
	if len(mw) == 0 {
		return
	}
	a.middleware = append(a.middleware, mw...)
}

// ServeHTTP implements http.Handler. Requests pass through the pre-routing
// chain (if any) before reaching the router.
func (a *DefaultApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.preChain == nil {
		a.router.ServeHTTP(w, r)
		return
	}
	a.servePre(w, r)
}

// Configuration setters.
func (a *DefaultApp) SetErrorHandler(h ErrorHandler)    { a.OnError = h }
func (a *DefaultApp) SetNotFoundHandler(h http.Handler) { a.NotFound = h }
func (a *DefaultApp) SetMethodNotAllowedHandler(h http.Handler) {
	a.MethodNA = h
}

// Getters mirror the setters.
func (a *DefaultApp) ErrorHandler() ErrorHandler            { return a.OnError }
func (a *DefaultApp) NotFoundHandler() http.Handler         { return a.NotFound }
func (a *DefaultApp) MethodNotAllowedHandler() http.Handler { return a.MethodNA }
