package app

import (
	"net/http"

	"github.com/goflash/strict/ctx"
	"github.com/julienschmidt/httprouter"
)

// GET registers a handler for HTTP GET requests on the given path.
// Optionally accepts route-specific middleware.
//
// Example:
//
//	a.GET("/items/:id", ShowItem, Auth)
//	// order: global -> Auth -> ShowItem; handler sees c.Param("id")
func (a *DefaultApp) GET(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodGet, path, h, mws...)
}

// POST registers a handler for HTTP POST requests on the given path.
func (a *DefaultApp) POST(path string, h Handler, mws ...Middleware) {
	a.handle(http.MethodPost, path, h, mws...)
}

// ANY registers a handler for all common HTTP methods (GET, POST, PUT, PATCH,
// DELETE, OPTIONS, HEAD) on the given path. Error pages reached through a
// rewritten request path are usually registered with ANY.
func (a *DefaultApp) ANY(path string, h Handler, mws ...Middleware) {
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead} {
		a.handle(m, path, h, mws...)
	}
}

// Handle registers a handler for a custom HTTP method on the given path.
func (a *DefaultApp) Handle(method, path string, h Handler, mws ...Middleware) {
	a.handle(method, path, h, mws...)
}

// handle composes the middleware chain (route-specific then global), adapts the
// handler to the httprouter signature, injects the logger, and manages context
// pooling.
//
// The resulting call order at runtime is: global (left-to-right) -> route (left-to-right) -> handler.
func (a *DefaultApp) handle(method, path string, h Handler, mws ...Middleware) {
	final := compose(h, mws)
	final = compose(final, a.middleware)

	pattern := path
	a.router.Handle(method, path, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		r = r.WithContext(ctx.ContextWithLogger(r.Context(), a.Logger()))
		a.run(w, r, ps, pattern, final)
	})
}

// run executes h on a pooled context. The context goes back to the pool
// even when h panics.
func (a *DefaultApp) run(w http.ResponseWriter, r *http.Request, ps httprouter.Params, route string, h Handler) {
	concrete := a.pool.Get().(*ctx.DefaultContext)
	concrete.Reset(w, r, ps, route)
	defer func() {
		concrete.Finish()
		a.pool.Put(concrete)
	}()
	if err := h(concrete); err != nil {
		a.ErrorHandler()(concrete, err)
	}
}

// compose wraps h right-to-left so mws run left-to-right.
func compose(h Handler, mws []Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
