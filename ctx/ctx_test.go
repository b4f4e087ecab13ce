package ctx

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(method, target string, body io.Reader) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	return req, rec
}

func TestStringWritesStatusHeadersAndBody(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	assert.False(t, c.WroteHeader())
	require.NoError(t, c.String(http.StatusCreated, "hello"))
	assert.True(t, c.WroteHeader())
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.StatusCreated, c.StatusCode())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "hello", rec.Body.String())
}

func TestJSONWritesAndDefaults(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")

	type payload struct {
		Fix string `json:"proposed_fix"`
	}
	require.NoError(t, c.JSON(payload{Fix: "/items/457k"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"proposed_fix":"/items/457k"}`, rec.Body.String())
}

func TestJSONStatusAndEncodeError(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	require.NoError(t, c.Status(http.StatusBadRequest).JSON(map[string]int{"a": 1}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req, rec = newRequest(http.MethodGet, "/", nil)
	c.Reset(rec, req, nil, "/")
	assert.Error(t, c.JSON(math.Inf(1)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, c.WroteHeader())
}

func TestSendWritesBytesAndHeaders(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	n, err := c.Send(http.StatusTeapot, "application/octet-stream", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("Content-Length"))
}

func TestSendEmptyContentType(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	_, _ = c.Send(http.StatusOK, "", []byte("x"))
	if rec.Header().Get("Content-Length") != "1" {
		t.Fatalf("missing CL")
	}
}

func TestBadRequest(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	require.NoError(t, c.BadRequest())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bad Request", rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/", nil)
	c.Reset(rec, req, nil, "/")
	require.NoError(t, c.BadRequest("Invalid request URI"))
	assert.Equal(t, "Invalid request URI", rec.Body.String())
}

func TestStatusCodeStates(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")
	assert.Equal(t, 0, c.StatusCode())
	c.Status(http.StatusAccepted)
	assert.Equal(t, http.StatusAccepted, c.StatusCode())

	c.Reset(rec, req, nil, "/")
	c.wroteHeader = true
	assert.Equal(t, http.StatusOK, c.StatusCode())
}

func TestParamQueryMethodPathRoute(t *testing.T) {
	u := &url.URL{Scheme: "http", Host: "example.com", Path: "/items/457", RawQuery: "q=go"}
	req := &http.Request{Method: http.MethodGet, URL: u}
	rec := httptest.NewRecorder()
	ps := httprouter.Params{httprouter.Param{Key: "id", Value: "457"}}
	var c DefaultContext
	c.Reset(rec, req, ps, "/items/:id")
	assert.Equal(t, "GET", c.Method())
	assert.Equal(t, "/items/457", c.Path())
	assert.Equal(t, "/items/:id", c.Route())
	assert.Equal(t, "457", c.Param("id"))
	assert.Equal(t, "", c.Param("missing"))
	assert.Equal(t, "go", c.Query("q"))
}

func TestSetGetAndRequestSwap(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, nil, "/")

	type k struct{}
	c.Set(k{}, "v")
	assert.Equal(t, "v", c.Get(k{}))
	assert.NotSame(t, req, c.Request())
	assert.Nil(t, c.Get("absent"))
	assert.Equal(t, 7, c.Get("absent", 7))

	other := httptest.NewRecorder()
	c.SetResponseWriter(other)
	assert.Same(t, other, c.ResponseWriter())
}

func TestFinishDropsReferences(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/", nil)
	var c DefaultContext
	c.Reset(rec, req, httprouter.Params{{Key: "a", Value: "b"}}, "/")
	c.Finish()
	assert.Nil(t, c.Request())
	assert.Nil(t, c.ResponseWriter())
}

func TestLoggerContextRoundTrip(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	got := LoggerFromContext(ContextWithLogger(context.Background(), l))
	assert.Same(t, l, got)
	assert.Same(t, slog.Default(), LoggerFromContext(context.Background()))
	assert.Same(t, slog.Default(), LoggerFromContext(ContextWithLogger(context.Background(), nil)))
}
