package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// CommonTUIState holds state common to all TUI models
type CommonTUIState struct {
	Script    string
	Width     int
	Height    int
	Quitting  bool
	StartTime time.Time
}

// BaseTUIModel provides common functionality for all TUI models
type BaseTUIModel struct {
	State *CommonTUIState
}

// NewBaseTUIModel creates a new base TUI model
func NewBaseTUIModel(script string) *BaseTUIModel {
	return &BaseTUIModel{
		State: &CommonTUIState{
			Script:    script,
			Width:     80,
			Height:    24,
			StartTime: time.Now(),
		},
	}
}

// HandleWindowResize handles window resize messages consistently
func (b *BaseTUIModel) HandleWindowResize(msg tea.WindowSizeMsg) {
	b.State.Width = msg.Width
	b.State.Height = msg.Height
}

// IsQuitting returns true if the TUI is in quitting state
func (b *BaseTUIModel) IsQuitting() bool {
	return b.State.Quitting
}

// GetUptime returns the time elapsed since the TUI started
func (b *BaseTUIModel) GetUptime() time.Duration {
	return time.Since(b.State.StartTime)
}

// TickCmd returns a command that sends tick messages every second
func (b *BaseTUIModel) TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// TickMsg refreshes the uptime display
type TickMsg time.Time

// LogEntry represents a log entry with timestamp and content
type LogEntry struct {
	Timestamp time.Time
	Content   string
	Level     LogLevel
}

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarn
	LogLevelError
	LogLevelSuccess
)

// ClassifyLine guesses a display level from a formatted run log line
func ClassifyLine(line string) LogLevel {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "skipped row"), strings.Contains(lower, "warning"):
		return LogLevelWarn
	case strings.Contains(lower, "failed"), strings.Contains(lower, "error"):
		return LogLevelError
	case strings.Contains(lower, "run finished"):
		return LogLevelSuccess
	default:
		return LogLevelInfo
	}
}

// LogManager handles log entries with automatic pruning
type LogManager struct {
	entries []LogEntry
	maxSize int
}

// NewLogManager creates a new log manager with the specified maximum size
func NewLogManager(maxSize int) *LogManager {
	return &LogManager{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add adds a new log entry, pruning old entries if necessary
func (lm *LogManager) Add(content string, level LogLevel) {
	lm.entries = append(lm.entries, LogEntry{
		Timestamp: time.Now(),
		Content:   content,
		Level:     level,
	})
	if len(lm.entries) > lm.maxSize {
		lm.entries = lm.entries[len(lm.entries)-lm.maxSize:]
	}
}

// GetEntries returns all log entries
func (lm *LogManager) GetEntries() []LogEntry {
	return lm.entries
}

// Len returns the number of retained entries
func (lm *LogManager) Len() int {
	return len(lm.entries)
}

// ProgressTracker tracks completed passes against an optional target
type ProgressTracker struct {
	Total     int
	Current   int
	StartTime time.Time
}

// NewProgressTracker creates a tracker. A total of 0 means unbounded.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{Total: total, StartTime: time.Now()}
}

// Update records the number of completed passes
func (pt *ProgressTracker) Update(current int) {
	pt.Current = current
}

// Bounded reports whether a target was set
func (pt *ProgressTracker) Bounded() bool {
	return pt.Total > 0
}

// GetProgress returns the progress as a float between 0.0 and 1.0
func (pt *ProgressTracker) GetProgress() float64 {
	if pt.Total <= 0 {
		return 0.0
	}
	progress := float64(pt.Current) / float64(pt.Total)
	if progress > 1.0 {
		progress = 1.0
	}
	return progress
}
