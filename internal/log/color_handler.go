package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LevelCritical is a severity above slog.LevelError for failures that end the program.
const LevelCritical = slog.Level(12)

// TimeFormat is the timestamp layout at the start of every line.
const TimeFormat = "2006-01-02 15:04:05,000"

// levelColors maps each level to the color of its message.
var levelColors = map[slog.Level]color.Attribute{
	slog.LevelDebug: color.FgBlue,
	slog.LevelInfo:  color.FgGreen,
	slog.LevelWarn:  color.FgYellow,
	slog.LevelError: color.FgRed,
	LevelCritical:   color.FgMagenta,
}

// LevelName returns the upper-case name printed for a level.
// Levels between the named ones are printed as the next lower name.
func LevelName(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) color.Attribute {
	switch {
	case level >= LevelCritical:
		return levelColors[LevelCritical]
	case level >= slog.LevelError:
		return levelColors[slog.LevelError]
	case level >= slog.LevelWarn:
		return levelColors[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return levelColors[slog.LevelInfo]
	default:
		return levelColors[slog.LevelDebug]
	}
}

// ColorHandlerOptions configures a ColorHandler.
type ColorHandlerOptions struct {
	// Level is the minimum level that is written. Defaults to slog.LevelInfo.
	Level slog.Leveler

	// Color enables ANSI colors for the message part of each line.
	Color bool
}

// ColorHandler is a slog.Handler writing one human-readable line per record.
// Handlers derived with WithAttrs and WithGroup share the writer and its lock.
type ColorHandler struct {
	opts   ColorHandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  string
	prefix string
}

// NewColorHandler creates a ColorHandler writing to w.
func NewColorHandler(w io.Writer, opts *ColorHandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// Enabled reports whether records at level are written.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats r and writes it as a single line.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(r.Time.Format(TimeFormat))
		buf.WriteString(" - ")
	}
	buf.WriteString(LevelName(r.Level))
	buf.WriteString(" - ")

	if h.opts.Color {
		c := color.New(levelColor(r.Level))
		c.EnableColor()
		buf.WriteString(c.Sprint(r.Message))
	} else {
		buf.WriteString(r.Message)
	}

	buf.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that appends attrs to every line.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf bytes.Buffer
	buf.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&buf, h.prefix, a)
	}
	h2 := *h
	h2.attrs = buf.String()
	return &h2
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, groupPrefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		s = v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		s = v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r)
	})
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
