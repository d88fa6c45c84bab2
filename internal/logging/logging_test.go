package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFormatLine(t *testing.T) {
	at := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	line := FormatLine(at, "skipped row 3", "reason", "no match", "attempts", 3)
	assert.Equal(t, "13:04:05 - skipped row 3 reason=no match attempts=3", line)
}

func TestContextualLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	minLevel.Set(slog.LevelDebug)
	defer minLevel.Set(slog.LevelInfo)

	var lines []string
	l := NewContextualLogger("script.xlsx", "runner").WithSink(func(line string) {
		lines = append(lines, line)
	})

	l.Debug("debug only reaches the handler")
	l.Info("pass 1")
	l.Warn("skipped row 2", "reason", "not found")

	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " - pass 1"))
	assert.Contains(t, lines[1], "skipped row 2 reason=not found")

	out := buf.String()
	assert.Contains(t, out, "debug only reaches the handler")
	assert.Contains(t, out, "component=runner")
	assert.Contains(t, out, "subject=script.xlsx")
}

func TestTemplateFormat(t *testing.T) {
	assert.Equal(t, "⏳ Waiting: 2s", WaitTemplate.Format("2s"))
	assert.Equal(t, "📍 Coordinate click: (10, 20)", PointTemplate.Formatf("(%d, %d)", 10, 20))
}
