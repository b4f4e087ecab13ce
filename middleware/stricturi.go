package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goflash/strict"
	"github.com/goflash/strict/core"
	"github.com/goflash/strict/ctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultErrorPath is the path an invalid request is rewritten to before the
// error page runs.
const DefaultErrorPath = "/invalid-url"

// StrictURIConfig configures the StrictURI middleware.
//
// Prefix is prepended to the request path when reconstructing the URI the
// client asked for. Set it when a proxy strips a mount prefix before the
// request reaches the app.
//
// MaxLength caps the work spent on a single request: a candidate longer than
// MaxLength is invalid, and the repair only searches its first MaxLength
// bytes. Zero means unlimited.
//
// ErrorPage renders the response for invalid requests. It sees the rewritten
// request (path ErrorPath, no query) and can read the rejected URI with
// InvalidURIFromContext. The default answers 400 "Invalid request URI".
//
// Example:
//
//	a.Pre(middleware.StrictURI(middleware.StrictURIConfig{
//		Prefix:    "/shop",
//		MaxLength: 8 << 10,
//		ErrorPage: func(c strict.Ctx) error {
//			bad, _ := middleware.InvalidURIFromContext(c.Context())
//			return c.Status(http.StatusBadRequest).JSON(map[string]string{
//				"did_you_mean": string(bad.ProposedFix),
//			})
//		},
//	}))
type StrictURIConfig struct {
	Prefix     string                              `mapstructure:"prefix"`
	ErrorPath  string                              `mapstructure:"error_path" validate:"omitempty,startswith=/"`
	MaxLength  int                                 `mapstructure:"max_length" validate:"gte=0"`
	ErrorPage  strict.Handler                      `mapstructure:"-"`
	Classifier *core.Classifier                    `mapstructure:"-"`
	Components func(*http.Request) core.Components `mapstructure:"-"`
}

var configValidator = validator.New()

// Validate checks the configuration.
func (cfg StrictURIConfig) Validate() error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("strict uri config: %w", err)
	}
	return nil
}

// InvalidURI is the rejected request URI and its proposed replacement.
// ProposedFix is empty when no non-empty prefix of Original is parseable.
type InvalidURI struct {
	Original    []byte
	ProposedFix []byte
}

type invalidURIKey struct{}

// InvalidURIFromContext returns the URI rejected by StrictURI, if any.
func InvalidURIFromContext(ctx context.Context) (InvalidURI, bool) {
	v, ok := ctx.Value(invalidURIKey{}).(InvalidURI)
	return v, ok
}

// StrictURI returns middleware that rejects requests whose URI would break
// strict downstream parsing: raw bytes outside the URI grammar, or percent
// escapes that decode to invalid UTF-8. Such URIs usually come from mail
// clients appending junk to links.
//
// For an invalid request the middleware logs a warning with the referer,
// records a span event, stores the InvalidURI in the request context,
// rewrites the request to ErrorPath and calls ErrorPage instead of next.
// Valid requests pass through untouched.
//
// Register it with app.Pre so it also sees requests that match no route.
// It panics if the configuration is invalid.
func StrictURI(cfgs ...StrictURIConfig) strict.Middleware {
	cfg := StrictURIConfig{}
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if cfg.ErrorPath == "" {
		cfg.ErrorPath = DefaultErrorPath
	}
	if cfg.ErrorPage == nil {
		cfg.ErrorPage = defaultInvalidURIPage
	}
	if cfg.Classifier == nil {
		cfg.Classifier = &core.Classifier{}
	}
	if cfg.Components == nil {
		prefix := cfg.Prefix
		cfg.Components = func(r *http.Request) core.Components { return RequestComponents(r, prefix) }
	}

	return func(next strict.Handler) strict.Handler {
		return func(c strict.Ctx) error {
			out := cfg.check(cfg.Components(c.Request()).Candidate())
			if out.Valid {
				return next(c)
			}

			bad := InvalidURI{Original: out.Original, ProposedFix: out.ProposedFix}
			reportInvalidURI(c, bad)
			c.Set(invalidURIKey{}, bad)
			c.SetRequest(rewriteTarget(c.Request(), cfg.ErrorPath))
			return cfg.ErrorPage(c)
		}
	}
}

// check applies the MaxLength policy around the classifier.
func (cfg StrictURIConfig) check(candidate []byte) core.Outcome {
	if cfg.MaxLength > 0 && len(candidate) > cfg.MaxLength {
		return core.Outcome{
			Original:    candidate,
			ProposedFix: cfg.Classifier.LongestParseablePrefix(candidate[:cfg.MaxLength]),
		}
	}
	return cfg.Classifier.Check(candidate)
}

// RequestComponents extracts the raw URI components of r from the request
// target exactly as received on the wire. For an absolute-form target the
// scheme and authority are dropped; any other target, including one that
// does not start with '/', is classified as is. Only requests without a
// target (built in process, RequestURI empty) fall back to the escaped URL
// path and raw query.
func RequestComponents(r *http.Request, prefix string) core.Components {
	comp := core.Components{Prefix: []byte(prefix)}
	target := r.RequestURI
	if target == "" {
		if r.URL != nil {
			comp.Path, comp.Query = []byte(r.URL.EscapedPath()), []byte(r.URL.RawQuery)
		}
		return comp
	}
	if !strings.HasPrefix(target, "/") {
		target = stripSchemeAuthority(target)
	}
	path, query, _ := strings.Cut(target, "?")
	comp.Path, comp.Query = []byte(path), []byte(query)
	return comp
}

// stripSchemeAuthority turns "http://host/p?q" into "/p?q". Targets without
// "://" are returned unchanged.
func stripSchemeAuthority(target string) string {
	i := strings.Index(target, "://")
	if i < 0 {
		return target
	}
	rest := target[i+len("://"):]
	if j := strings.IndexAny(rest, "/?"); j >= 0 {
		return rest[j:]
	}
	return ""
}

func reportInvalidURI(c strict.Ctx, bad InvalidURI) {
	r := c.Request()
	referer := strings.ToValidUTF8(r.Referer(), "?")
	if referer == "" {
		referer = "(unknown)"
	}
	attrs := []any{
		"referer", referer,
		"original", strconv.Quote(string(bad.Original)),
		"proposed_fix", string(bad.ProposedFix),
	}
	if rid, ok := RequestIDFromContext(c.Context()); ok {
		attrs = append(attrs, "request_id", rid)
	}
	ctx.LoggerFromContext(c.Context()).Warn("invalid URL received from referer", attrs...)

	trace.SpanFromContext(c.Context()).AddEvent("strict_uri.invalid", trace.WithAttributes(
		attribute.Int("strict_uri.original_length", len(bad.Original)),
		attribute.String("strict_uri.proposed_fix", string(bad.ProposedFix)),
		attribute.String("http.request.header.referer", referer),
	))
}

// rewriteTarget returns a copy of r addressed to path with no query, so
// nothing downstream sees the corrupted target.
func rewriteTarget(r *http.Request, path string) *http.Request {
	r2 := r.WithContext(r.Context())
	var u url.URL
	if r.URL != nil {
		u = *r.URL
	}
	u.Path, u.RawPath, u.RawQuery, u.ForceQuery = path, "", "", false
	r2.URL = &u
	r2.RequestURI = path
	return r2
}

func defaultInvalidURIPage(c strict.Ctx) error {
	return c.BadRequest("Invalid request URI")
}
