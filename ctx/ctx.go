package ctx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	router "github.com/julienschmidt/httprouter"
)

// Ctx is the request/response context interface exposed to handlers and middleware.
// It is implemented by *DefaultContext and lives in package ctx to avoid adapters
// and import cycles.
//
// Typical usage inside an error page handler:
//
//	func invalidURL(c ctx.Ctx) error {
//	    c.Header("Cache-Control", "no-store")
//	    return c.Status(http.StatusBadRequest).JSON(map[string]any{"path": c.Path()})
//	}
//
// Concurrency: Ctx is not safe for concurrent writes to the underlying
// http.ResponseWriter.
type Ctx interface {
	// Request returns the underlying *http.Request associated with this context.
	Request() *http.Request
	// SetRequest replaces the underlying *http.Request on the context.
	// Middleware rewriting the request target (StrictURI) relies on this.
	SetRequest(*http.Request)
	// ResponseWriter returns the underlying http.ResponseWriter.
	ResponseWriter() http.ResponseWriter
	// SetResponseWriter replaces the underlying http.ResponseWriter.
	SetResponseWriter(http.ResponseWriter)

	// Context returns the request-scoped context.Context.
	Context() context.Context
	// Method returns the HTTP method (e.g., "GET").
	Method() string
	// Path returns the decoded request URL path.
	Path() string
	// Route returns the route pattern (e.g., "/items/:id") when available.
	// Pre-routing middleware sees an empty route.
	Route() string
	// Param returns a path parameter by name ("" if not present).
	Param(name string) string
	// Query returns a query string parameter by key ("" if not present).
	Query(key string) string

	// Header sets a response header key/value.
	Header(key, value string)
	// Status stages the HTTP status code to be written; returns the Ctx to allow chaining.
	Status(code int) Ctx
	// StatusCode returns the status that will be written (or 200 after header write, or 0 if unset).
	StatusCode() int
	// JSON serializes v to JSON and writes it with an appropriate Content-Type.
	// If Status() was not set, it defaults to 200.
	JSON(v any) error
	// String writes a text/plain body with the provided status code.
	String(status int, body string) error
	// Send writes raw bytes with a specific status and content type.
	Send(status int, contentType string, b []byte) (int, error)
	// WroteHeader reports whether the header has already been written to the client.
	WroteHeader() bool
	// BadRequest sends a 400 with an optional message.
	BadRequest(message ...string) error

	// Get retrieves a value from the request context by key, with optional default.
	Get(key any, def ...any) any
	// Set stores a value into a derived request context and replaces the underlying request.
	Set(key, value any) Ctx
}

// DefaultContext is the concrete implementation of Ctx used by goflash.
// It wraps the http.ResponseWriter and *http.Request and tracks route,
// status, and response state for each request.
type DefaultContext struct {
	w           http.ResponseWriter // underlying response writer
	r           *http.Request       // underlying request
	params      router.Params       // route parameters
	status      int                 // status code to write
	wroteHeader bool                // whether header was written
	wroteBytes  int                 // number of bytes written
	route       string              // route pattern (e.g., /items/:id)
}

// Reset prepares the context for a new request. Used internally by the framework.
// Pre-routing chains reset with nil params and an empty route.
func (c *DefaultContext) Reset(w http.ResponseWriter, r *http.Request, ps router.Params, route string) {
	c.w = w
	c.r = r
	c.params = ps
	c.status = 0
	c.wroteHeader = false
	c.wroteBytes = 0
	c.route = route
}

// Finish releases per-request references before the context returns to the pool.
func (c *DefaultContext) Finish() {
	c.w = nil
	c.r = nil
	c.params = nil
}

// MarkWritten records that status was already written to the underlying
// writer by someone else (the router, in a pre-routing chain). Later writes
// through this context are then treated as a started response.
func (c *DefaultContext) MarkWritten(status int) {
	c.status = status
	c.wroteHeader = true
}

// Request returns the underlying *http.Request.
func (c *DefaultContext) Request() *http.Request { return c.r }

// SetRequest replaces the underlying *http.Request.
func (c *DefaultContext) SetRequest(r *http.Request) { c.r = r }

// ResponseWriter returns the underlying http.ResponseWriter.
func (c *DefaultContext) ResponseWriter() http.ResponseWriter { return c.w }

// SetResponseWriter replaces the underlying http.ResponseWriter.
func (c *DefaultContext) SetResponseWriter(w http.ResponseWriter) { c.w = w }

// WroteHeader reports whether the response header has been written.
func (c *DefaultContext) WroteHeader() bool { return c.wroteHeader }

// Context returns the request context.Context.
func (c *DefaultContext) Context() context.Context { return c.r.Context() }

// Set stores a value in the request context using the provided key and value.
// It replaces the request with a clone that carries the new context and returns
// the context for chaining.
//
// Example:
//
//	type userKey struct{}
//	c.Set(userKey{}, currentUser)
func (c *DefaultContext) Set(key, value any) Ctx {
	ctx := context.WithValue(c.Context(), key, value)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

// Get returns a value from the request context by key, or def[0] (if given)
// when the key is absent.
func (c *DefaultContext) Get(key any, def ...any) any {
	if v := c.Context().Value(key); v != nil {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// Method returns the HTTP method for the request (e.g., "GET").
func (c *DefaultContext) Method() string { return c.r.Method }

// Path returns the decoded request URL path.
func (c *DefaultContext) Path() string { return c.r.URL.Path }

// Route returns the route pattern for the current request, if known.
func (c *DefaultContext) Route() string { return c.route }

// Param returns a path parameter by name. Returns "" if not found.
func (c *DefaultContext) Param(name string) string { return c.params.ByName(name) }

// Query returns a query string parameter by key. Returns "" if not found.
func (c *DefaultContext) Query(key string) string { return c.r.URL.Query().Get(key) }

// Status stages the response status code (without writing the header yet).
func (c *DefaultContext) Status(code int) Ctx {
	c.status = code
	return c
}

// StatusCode returns the status code that will be written.
// If not set yet and header hasn't been written, returns 0. If the header has
// already been written without an explicit status, returns 200.
func (c *DefaultContext) StatusCode() int {
	if c.status != 0 {
		return c.status
	}
	if c.wroteHeader {
		return http.StatusOK
	}
	return 0
}

// Header sets a header on the response.
// Has no effect after the header is written.
func (c *DefaultContext) Header(key, value string) { c.w.Header().Set(key, value) }

var jsonBufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// JSON serializes the provided value as JSON and writes the response.
// If Status() has not been called yet, it defaults to 200 OK.
//
// Example:
//
//	return c.Status(http.StatusBadRequest).JSON(map[string]string{"error": "invalid request URI"})
func (c *DefaultContext) JSON(v any) error {
	buf := jsonBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer jsonBufPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		if !c.wroteHeader {
			c.w.WriteHeader(http.StatusInternalServerError)
			c.wroteHeader = true
		}
		return err
	}
	b := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	if !c.wroteHeader {
		if c.status == 0 {
			c.status = http.StatusOK
		}
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Header("Content-Length", strconv.Itoa(len(b)))
		c.w.WriteHeader(c.status)
		c.wroteHeader = true
	}
	n, err := c.w.Write(b)
	c.wroteBytes += n
	return err
}

// String writes a plain text response with the given status and body.
func (c *DefaultContext) String(status int, body string) error {
	if !c.wroteHeader {
		c.status = status
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Content-Length", strconv.Itoa(len(body)))
		c.w.WriteHeader(status)
		c.wroteHeader = true
	}
	n, err := io.WriteString(c.w, body)
	c.wroteBytes += n
	return err
}

// Send writes raw bytes with the given status and content type.
// If contentType is empty, no Content-Type header is set.
func (c *DefaultContext) Send(status int, contentType string, b []byte) (int, error) {
	if !c.wroteHeader {
		c.status = status
		if contentType != "" {
			c.Header("Content-Type", contentType)
		}
		c.Header("Content-Length", strconv.Itoa(len(b)))
		c.w.WriteHeader(status)
		c.wroteHeader = true
	}
	n, err := c.w.Write(b)
	c.wroteBytes += n
	return n, err
}

// BadRequest sends a 400 Bad Request response with optional message.
func (c *DefaultContext) BadRequest(message ...string) error {
	msg := http.StatusText(http.StatusBadRequest)
	if len(message) > 0 {
		msg = message[0]
	}
	return c.String(http.StatusBadRequest, msg)
}
