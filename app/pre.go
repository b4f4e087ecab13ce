package app

import (
	"net/http"

	"github.com/goflash/strict/ctx"
)

// Pre registers middleware that runs for every request before routing,
// including requests whose path matches no route. Request validation that
// must see the raw request target (StrictURI) belongs here: a pre middleware
// that does not call next stops the request before the router sees it.
//
// Pre middleware runs in the order added. The context it receives has no
// route pattern or params. After next returns, StatusCode reports the status
// written by the routed handler.
//
// Example:
//
//	a.Pre(middleware.RequestID(), middleware.Logger(), middleware.StrictURI())
func (a *DefaultApp) Pre(mw ...Middleware) {
	if len(mw) == 0 {
		return
	}
	a.pre = append(a.pre, mw...)
	a.preChain = compose(a.dispatch, a.pre)
}

func (a *DefaultApp) servePre(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(ctx.ContextWithLogger(r.Context(), a.Logger()))
	a.run(w, r, nil, "", a.preChain)
}

// dispatch is the terminal handler of the pre-routing chain. The status
// written by the router is mirrored onto c, also when a routed handler
// panics after writing, so pre middleware never writes a second header.
func (a *DefaultApp) dispatch(c Ctx) error {
	sw := &statusWriter{ResponseWriter: c.ResponseWriter()}
	defer func() {
		if sw.status == 0 {
			return
		}
		if dc, ok := c.(*ctx.DefaultContext); ok {
			dc.MarkWritten(sw.status)
		} else {
			c.Status(sw.status)
		}
	}()
	a.router.ServeHTTP(sw, c.Request())
	return nil
}

// statusWriter records the first status written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
