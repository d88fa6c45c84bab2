package constants

import "time"

// Default timings used throughout the application
const (
	// Inter-attempt and inter-pass delay when nothing is configured
	DefaultInterval = 10 * time.Millisecond

	// Pause after a paste so the target application can consume the clipboard
	PasteSettleDelay = 500 * time.Millisecond

	// Delay before sampling the cursor for the coordinate helper
	CursorSampleDelay = 5 * time.Second

	// Pointer travel time and gap between the clicks of a double click
	ClickMoveDuration = 200 * time.Millisecond
	ClickInterval     = 200 * time.Millisecond
)

// Image matching
const (
	// Fixed acceptance threshold for template matches, 0..1
	MatchConfidence = 0.8

	// Attempts made by the default (retry count 1) image policy
	DefaultAttemptCeiling = 3
)

// Hotkeys
const (
	DefaultStopHotkey = "ctrl+shift+q"
)

// GetInterval converts interval seconds into a duration
func GetInterval(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
