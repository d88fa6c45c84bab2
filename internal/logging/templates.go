package logging

import "fmt"

// LogTemplate represents a logging template with standardized emoji and formatting
type LogTemplate struct {
	emoji  string
	prefix string
	level  LogLevel
}

// LogLevel represents the logging level for templates
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelSuccess
	LevelWarn
	LevelError
	LevelDebug
)

// Common logging templates with standardized emojis and formats
var (
	// Pointer actions
	ClickTemplate       = LogTemplate{emoji: "🖱️", prefix: "Click", level: LevelInfo}
	DoubleClickTemplate = LogTemplate{emoji: "🖱️", prefix: "Double click", level: LevelInfo}
	RightClickTemplate  = LogTemplate{emoji: "🖱️", prefix: "Right click", level: LevelInfo}
	PointTemplate       = LogTemplate{emoji: "📍", prefix: "Coordinate click", level: LevelInfo}
	ScrollTemplate      = LogTemplate{emoji: "🔃", prefix: "Scroll", level: LevelInfo}

	// Input / timing
	PasteTemplate = LogTemplate{emoji: "📝", prefix: "Paste", level: LevelInfo}
	WaitTemplate  = LogTemplate{emoji: "⏳", prefix: "Waiting", level: LevelInfo}

	// Image search
	SearchTemplate   = LogTemplate{emoji: "🔍", prefix: "Searching for", level: LevelDebug}
	FoundTemplate    = LogTemplate{emoji: "✓", prefix: "Found", level: LevelSuccess}
	NotFoundTemplate = LogTemplate{emoji: "✗", prefix: "Not found", level: LevelWarn}

	// Run lifecycle
	StartTemplate    = LogTemplate{emoji: "🚀", prefix: "Starting", level: LevelInfo}
	StopTemplate     = LogTemplate{emoji: "🛑", prefix: "Stopping", level: LevelInfo}
	PassTemplate     = LogTemplate{emoji: "🔄", prefix: "", level: LevelInfo}
	SkipTemplate     = LogTemplate{emoji: "⏭️", prefix: "", level: LevelWarn}
	CompleteTemplate = LogTemplate{emoji: "✅", prefix: "Completed", level: LevelSuccess}
	FailTemplate     = LogTemplate{emoji: "❌", prefix: "Failed", level: LevelError}

	// Files
	LoadTemplate = LogTemplate{emoji: "📂", prefix: "Loading", level: LevelInfo}
	SaveTemplate = LogTemplate{emoji: "💾", prefix: "Saved", level: LevelSuccess}
)

// Format formats the template with the provided message
func (t LogTemplate) Format(message string) string {
	if t.prefix != "" {
		return fmt.Sprintf("%s %s: %s", t.emoji, t.prefix, message)
	}
	return fmt.Sprintf("%s %s", t.emoji, message)
}

// Formatf formats the template with printf-style formatting
func (t LogTemplate) Formatf(format string, args ...interface{}) string {
	return t.Format(fmt.Sprintf(format, args...))
}

// Log logs the message using the appropriate logging function based on level
func (t LogTemplate) Log(message string) {
	formatted := t.Format(message)
	switch t.level {
	case LevelInfo:
		UserInfof("%s", formatted)
	case LevelSuccess:
		Successf("%s", formatted)
	case LevelWarn:
		UserWarnf("%s", formatted)
	case LevelError:
		UserErrorf("%s", formatted)
	case LevelDebug:
		Debug(formatted)
	}
}

// Logf logs the message using printf-style formatting
func (t LogTemplate) Logf(format string, args ...interface{}) {
	t.Log(fmt.Sprintf(format, args...))
}

// LoadFile logs file load operation
func LoadFile(path string) {
	LoadTemplate.Log(path)
}

// SaveFile logs file save operation
func SaveFile(path string, details string) {
	if details != "" {
		SaveTemplate.Logf("%s (%s)", path, details)
	} else {
		SaveTemplate.Log(path)
	}
}

