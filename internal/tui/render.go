package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeeftor/rpa-runner/internal/styles"
)

// Common TUI styles using the centralized styles package
var (
	TitleStyle = styles.TitleStyle
	MutedStyle = styles.MutedStyle
	BoxStyle   = styles.BoxStyle
	BoldStyle  = styles.BoldStyle
)

// Additional TUI-specific styles
var (
	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(styles.Success))

	LogInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Text))

	LogWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Warning))

	LogErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Error))

	LogSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(styles.Success))

	UptimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.TextMuted))
)

// StatusInfo is the content of the state line
type StatusInfo struct {
	State  string
	Passes int
	Target int
	Uptime time.Duration
	Hotkey string
}

// TUIRenderer provides common rendering functions for TUI models
type TUIRenderer struct {
	width int
}

// NewTUIRenderer creates a new TUI renderer
func NewTUIRenderer(width int) *TUIRenderer {
	return &TUIRenderer{width: width}
}

// UpdateDimensions updates the renderer width
func (r *TUIRenderer) UpdateDimensions(width int) {
	r.width = width
}

// RenderTitle renders a title bar spanning the width
func (r *TUIRenderer) RenderTitle(title string) string {
	if r.width <= 0 {
		return TitleStyle.Render(title)
	}
	return TitleStyle.Width(r.width).Render(title)
}

// RenderStatus renders the state line with pass counter and uptime
func (r *TUIRenderer) RenderStatus(info StatusInfo) string {
	parts := []string{
		fmt.Sprintf("State: %s", styles.StateStyle(info.State).Render(info.State)),
	}

	if info.Target > 0 {
		parts = append(parts, fmt.Sprintf("Pass: %d/%d", info.Passes, info.Target))
	} else {
		parts = append(parts, fmt.Sprintf("Passes: %d", info.Passes))
	}

	parts = append(parts, fmt.Sprintf("Uptime: %s", UptimeStyle.Render(formatDuration(info.Uptime))))

	if info.Hotkey != "" {
		parts = append(parts, fmt.Sprintf("Stop: %s", styles.KeyStyle.Render(info.Hotkey)))
	}
	return strings.Join(parts, " | ")
}

// RenderProgressBar renders a progress bar with percentage
func (r *TUIRenderer) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 40
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %.0f%%", ProgressBarStyle.Render(bar), progress*100)
}

// RenderLogEntries renders log entries with styling by level
func (r *TUIRenderer) RenderLogEntries(entries []LogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		var style lipgloss.Style
		switch entry.Level {
		case LogLevelWarn:
			style = LogWarnStyle
		case LogLevelError:
			style = LogErrorStyle
		case LogLevelSuccess:
			style = LogSuccessStyle
		default:
			style = LogInfoStyle
		}
		lines = append(lines, style.Render(entry.Content))
	}
	return strings.Join(lines, "\n")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int((d % time.Hour).Minutes()))
	}
}
