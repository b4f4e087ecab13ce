package app

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreRunsBeforeRoutingForUnmatchedPaths(t *testing.T) {
	a := New()
	var seen []string
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) error {
			seen = append(seen, c.Path())
			assert.Empty(t, c.Route())
			return next(c)
		}
	})
	a.GET("/ok", func(c Ctx) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{"/ok", "/missing"}, seen)
}

func TestPreShortCircuitSkipsRouter(t *testing.T) {
	a := New()
	routed := false
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) error { return c.BadRequest("stop") }
	})
	a.GET("/x", func(c Ctx) error { routed = true; return nil })

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.False(t, routed)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "stop", rec.Body.String())
}

func TestPreObservesRoutedStatus(t *testing.T) {
	a := New()
	var status int
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) error {
			err := next(c)
			status = c.StatusCode()
			return err
		}
	})
	a.GET("/created", func(c Ctx) error { return c.String(http.StatusCreated, "c") })
	a.GET("/implicit", func(c Ctx) error { _, err := c.ResponseWriter().Write([]byte("x")); return err })

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/created", nil))
	assert.Equal(t, http.StatusCreated, status)

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/implicit", nil))
	assert.Equal(t, http.StatusOK, status)

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPreErrorUsesErrorHandler(t *testing.T) {
	a := New()
	a.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) error { return errors.New("pre failed") }
	})
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPreEmptyIsNoop(t *testing.T) {
	a := New().(*DefaultApp)
	a.Pre()
	require.Nil(t, a.preChain)
}

func TestStatusWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}
	sw.WriteHeader(http.StatusAccepted)
	sw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusAccepted, sw.status)
	assert.Same(t, rec, sw.Unwrap())
}

func TestPreMirrorsRoutedWrite(t *testing.T) {
	a := New()
	var wrote bool
	var status int
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) (err error) {
			defer func() {
				r := recover()
				wrote, status = c.WroteHeader(), c.StatusCode()
				if r != nil && !c.WroteHeader() {
					err = c.String(http.StatusInternalServerError, "late")
				}
			}()
			return next(c)
		}
	})
	a.GET("/quiet", func(c Ctx) error { return nil })
	a.GET("/panic", func(c Ctx) error {
		_ = c.String(http.StatusAccepted, "partial")
		panic("after write")
	})

	a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiet", nil))
	assert.False(t, wrote)

	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.True(t, wrote)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}
