package app

import (
	"log/slog"
	"net/http"
)

// App is the public surface of the application, implemented by *DefaultApp.
// Request validation hooks in through Pre; everything registered with Use
// or a route only runs for requests the router matched.
type App interface {
	// Middleware: Pre runs before routing for every request, Use wraps
	// matched routes only.
	Use(mw ...Middleware)
	Pre(mw ...Middleware)

	// Route registration
	GET(path string, h Handler, mws ...Middleware)
	POST(path string, h Handler, mws ...Middleware)
	ANY(path string, h Handler, mws ...Middleware)
	Handle(method, path string, h Handler, mws ...Middleware)

	ServeHTTP(w http.ResponseWriter, r *http.Request)

	SetLogger(l *slog.Logger)
	Logger() *slog.Logger

	// Fallback handlers and their current values.
	SetErrorHandler(h ErrorHandler)
	SetNotFoundHandler(h http.Handler)
	SetMethodNotAllowedHandler(h http.Handler)
	ErrorHandler() ErrorHandler
	NotFoundHandler() http.Handler
	MethodNotAllowedHandler() http.Handler
}
