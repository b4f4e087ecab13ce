package app

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultErrorHandlerNoDoubleWrite(t *testing.T) {
	a := New().(*DefaultApp)
	var logs bytes.Buffer
	a.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	a.OnError = defaultErrorHandler
	a.GET("/w", func(c Ctx) error {
		_ = c.String(http.StatusTeapot, "x")
		return io.ErrUnexpectedEOF
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/w", nil)
	a.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	assert.Equal(t, "x", rec.Body.String())
	assert.Contains(t, logs.String(), "handler failed after response started")
	assert.Contains(t, logs.String(), "status=418")
}

func TestDefaultErrorHandlerSanitizesPath(t *testing.T) {
	a := New()
	var logs bytes.Buffer
	a.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	a.Pre(func(next Handler) Handler {
		return func(c Ctx) error { return errors.New("rejected") }
	})
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a\xff", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "path=/a?")
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestMethodNotAllowedHandler(t *testing.T) {
	a := New()
	a.POST("/only-post", func(c Ctx) error { return nil })
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/only-post", nil)
	a.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	assert.Contains(t, rec.Header().Get("Allow"), http.MethodPost)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Method Not Allowed", rec.Body.String())
}
