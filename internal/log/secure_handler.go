package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue replaces sensitive attribute values.
const MaskValue = "***REDACTED***"

// queryMask replaces sensitive query parameter values. It needs no escaping.
const queryMask = "REDACTED"

// sensitiveKeys are attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"proxy_password":      true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"secret":              true,
}

// sensitiveQueryParams are URL query parameters whose values are masked.
var sensitiveQueryParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"password":     true,
	"secret":       true,
	"sig":          true,
	"signature":    true,
}

// urlPattern finds http(s) URLs inside free text such as error messages.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// SecureHandler wraps another slog.Handler and masks credentials in
// attribute values before passing records on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, RedactText(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs masks attrs and returns a wrapped handler that includes them.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a wrapped handler with the group applied.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, RedactText(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, RedactText(err.Error()))
		}
	}
	return a
}

// RedactText masks passwords and sensitive query parameters of every URL in s.
func RedactText(s string) string {
	if !strings.Contains(s, "://") {
		return s
	}
	return urlPattern.ReplaceAllStringFunc(s, RedactURL)
}

// RedactURL masks the password and sensitive query parameters of a URL.
// Strings that do not parse as a URL are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	_, changed := u.User.Password()

	if u.RawQuery != "" {
		q := u.Query()
		masked := false
		for k := range q {
			if sensitiveQueryParams[strings.ToLower(k)] {
				q.Set(k, queryMask)
				masked = true
			}
		}
		if masked {
			u.RawQuery = q.Encode()
			changed = true
		}
	}

	if !changed {
		return raw
	}
	return u.Redacted()
}

// Options configures NewLogger.
type Options struct {
	// Level is the minimum level written.
	Level slog.Leveler

	// Color enables colored messages.
	Color bool
}

// NewLogger creates a logger that writes colored, redacted lines to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	colorHandler := NewColorHandler(w, &ColorHandlerOptions{
		Level: opts.Level,
		Color: opts.Color,
	})
	return slog.New(NewSecureHandler(colorHandler))
}

// LevelFor maps the verbose and quiet switches to a level.
// Quiet wins over verbose.
func LevelFor(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Critical logs msg at LevelCritical.
func Critical(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelCritical, msg, args...)
}
