package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/goflash/strict"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goflash/strict/middleware"

// OTelConfig configures the OpenTelemetry tracing middleware.
//
// Tracer and Propagator default to the global provider and propagator.
// SpanName overrides the default "HTTP <METHOD> <route|path>" name; an empty
// result falls back to the default. Filter returning true skips tracing for
// the request. Status maps the final status and handler error to a span
// status; by default 5xx and errors are codes.Error.
type OTelConfig struct {
	Tracer          trace.Tracer
	Propagator      propagation.TextMapPropagator
	ServiceName     string
	SpanName        func(strict.Ctx) string
	Attributes      func(strict.Ctx) []attribute.KeyValue
	ExtraAttributes []attribute.KeyValue
	Status          func(code int, err error) (codes.Code, string)
	Filter          func(strict.Ctx) bool
	RecordDuration  bool
}

// OTel returns tracing middleware with default settings for serviceName.
// Placed in app.Pre ahead of StrictURI, every request gets a server span and
// rejected URIs show up as a "strict_uri.invalid" event on it.
func OTel(serviceName string, extra ...attribute.KeyValue) strict.Middleware {
	return OTelWithConfig(OTelConfig{ServiceName: serviceName, ExtraAttributes: extra})
}

// OTelWithConfig returns tracing middleware configured by cfg.
func OTelWithConfig(cfg OTelConfig) strict.Middleware {
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	prop := cfg.Propagator
	if prop == nil {
		prop = otel.GetTextMapPropagator()
	}
	status := cfg.Status
	if status == nil {
		status = defaultSpanStatus
	}

	return func(next strict.Handler) strict.Handler {
		return func(c strict.Ctx) error {
			if cfg.Filter != nil && cfg.Filter(c) {
				return next(c)
			}

			r := c.Request()
			parent := prop.Extract(c.Context(), propagation.HeaderCarrier(r.Header))

			name := ""
			if cfg.SpanName != nil {
				name = cfg.SpanName(c)
			}
			if name == "" {
				target := c.Route()
				if target == "" {
					target = c.Path()
				}
				name = "HTTP " + c.Method() + " " + strings.ToValidUTF8(target, "?")
			}

			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", strings.ToValidUTF8(c.Path(), "?")),
			}
			if route := c.Route(); route != "" {
				attrs = append(attrs, attribute.String("http.route", route))
			}
			if cfg.ServiceName != "" {
				attrs = append(attrs, attribute.String("service.name", cfg.ServiceName))
			}
			if cfg.Attributes != nil {
				attrs = append(attrs, cfg.Attributes(c)...)
			}
			attrs = append(attrs, cfg.ExtraAttributes...)

			spanCtx, span := tracer.Start(parent, name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			c.SetRequest(r.WithContext(spanCtx))
			start := time.Now()
			err := next(c)

			code := c.StatusCode()
			if code == 0 {
				code = http.StatusOK
			}
			span.SetAttributes(attribute.Int("http.response.status_code", code))
			if cfg.RecordDuration {
				span.SetAttributes(attribute.Float64("http.server.duration_ms", float64(time.Since(start).Microseconds())/1000.0))
			}
			if err != nil {
				span.RecordError(err)
			}
			sc, desc := status(code, err)
			span.SetStatus(sc, desc)
			return err
		}
	}
}

func defaultSpanStatus(code int, err error) (codes.Code, string) {
	if err != nil {
		return codes.Error, err.Error()
	}
	if code >= http.StatusInternalServerError {
		return codes.Error, http.StatusText(code)
	}
	return codes.Unset, ""
}
