package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	// Minimum level the color handler lets through
	minLevel = new(slog.LevelVar)

	// Default logger instance
	logger *slog.Logger

	// Serializes writes so lines from the run task and the hotkey goroutine do not interleave
	writeMu sync.Mutex

	// Colors for different log levels
	infoColor  = color.New(color.FgGreen).SprintFunc()
	warnColor  = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
	debugColor = color.New(color.FgCyan).SprintFunc()
	traceColor = color.New(color.FgMagenta).SprintFunc()
)

// LevelTrace sits below debug and is used for per-attempt provider chatter
const LevelTrace = slog.Level(-8)

// ColorTextHandler is a simple handler that adds colors to log output
type ColorTextHandler struct {
	w     io.Writer
	attrs []slog.Attr
}

// NewColorTextHandler creates a new ColorTextHandler
func NewColorTextHandler(w io.Writer) *ColorTextHandler {
	return &ColorTextHandler{w: w}
}

// Handle handles the log record
func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	var levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelText = errorColor("ERROR")
	case r.Level >= slog.LevelWarn:
		levelText = warnColor("WARN")
	case r.Level >= slog.LevelInfo:
		levelText = infoColor("INFO")
	case r.Level >= slog.LevelDebug:
		levelText = debugColor("DEBUG")
	default:
		levelText = traceColor("TRACE")
	}

	var attrs strings.Builder
	for _, a := range h.attrs {
		attrs.WriteString(" " + a.Key + "=" + formatAttrValue(a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "source" {
			return true
		}
		attrs.WriteString(" " + a.Key + "=" + formatAttrValue(a.Value))
		return true
	})

	writeMu.Lock()
	defer writeMu.Unlock()

	// Write the log line with a carriage return at the beginning to ensure clean output
	_, err := fmt.Fprintf(h.w, "\r%s %s%s\n", levelText, r.Message, attrs.String())
	return err
}

// formatAttrValue formats a slog.Value as a string
func formatAttrValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return fmt.Sprintf("%g", v.Float64())
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format("15:04:05")
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a new handler with the given attributes
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ColorTextHandler{w: h.w, attrs: merged}
}

// WithGroup returns a new handler with the given group
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	return h
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= minLevel.Level()
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (use trace, debug, info, warn, error)", level)
	}
}

// InitWithLevel initializes the logger from a level name, falling back to info
func InitWithLevel(level string) {
	parsed, err := ParseLevel(level)
	minLevel.Set(parsed)

	logger = slog.New(NewColorTextHandler(os.Stdout))
	slog.SetDefault(logger)

	if err != nil {
		Warn("Falling back to info logging", "error", err)
	}
}

// SetOutput sets the output writer for the logger
func SetOutput(w io.Writer) {
	logger = slog.New(NewColorTextHandler(w))
	slog.SetDefault(logger)
}

// Trace logs a trace message
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}
