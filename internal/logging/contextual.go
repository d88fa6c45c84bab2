package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// LineSink receives one formatted, human-readable line per log record
type LineSink func(line string)

// ContextualLogger carries a subject and component on every record and can
// mirror records to a LineSink (the control surface's log pane)
type ContextualLogger struct {
	subject   string
	component string
	sink      LineSink
	minSink   slog.Level
}

// NewContextualLogger creates a logger bound to a subject (usually the script path) and a component
func NewContextualLogger(subject, component string) *ContextualLogger {
	return &ContextualLogger{
		subject:   subject,
		component: component,
		minSink:   slog.LevelInfo,
	}
}

// WithSink returns a copy that also mirrors info-and-above records to sink
func (l *ContextualLogger) WithSink(sink LineSink) *ContextualLogger {
	cp := *l
	cp.sink = sink
	return &cp
}

// WithComponent returns a copy bound to another component, keeping subject and sink
func (l *ContextualLogger) WithComponent(component string) *ContextualLogger {
	cp := *l
	cp.component = component
	return &cp
}

func (l *ContextualLogger) log(level slog.Level, msg string, args ...any) {
	if l == nil {
		return
	}

	attrs := make([]any, 0, len(args)+4)
	if l.subject != "" {
		attrs = append(attrs, "subject", l.subject)
	}
	if l.component != "" {
		attrs = append(attrs, "component", l.component)
	}
	attrs = append(attrs, args...)
	slog.Log(context.Background(), level, msg, attrs...)

	if l.sink != nil && level >= l.minSink {
		l.sink(FormatLine(time.Now(), msg, args...))
	}
}

// Trace logs a trace message
func (l *ContextualLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }

// Debug logs a debug message
func (l *ContextualLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs an info message
func (l *ContextualLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs a warning message
func (l *ContextualLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs an error message
func (l *ContextualLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// FormatLine renders "HH:MM:SS - msg k=v ..." for line sinks
func FormatLine(at time.Time, msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(at.Format("15:04:05"))
	b.WriteString(" - ")
	b.WriteString(msg)

	r := slog.NewRecord(at, slog.LevelInfo, msg, 0)
	r.Add(args...)
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(" " + a.Key + "=" + formatAttrValue(a.Value))
		return true
	})
	return b.String()
}
