package logging

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	successPrefix = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnPrefix    = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorPrefix   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// UserInfof prints a plain user-facing message to stdout
func UserInfof(format string, args ...interface{}) {
	writeMu.Lock()
	defer writeMu.Unlock()
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Successf prints a user-facing success message
func Successf(format string, args ...interface{}) {
	writeMu.Lock()
	defer writeMu.Unlock()
	fmt.Fprintf(os.Stdout, "%s\n", successPrefix(fmt.Sprintf(format, args...)))
}

// UserWarnf prints a user-facing warning to stderr
func UserWarnf(format string, args ...interface{}) {
	writeMu.Lock()
	defer writeMu.Unlock()
	fmt.Fprintf(os.Stderr, "%s\n", warnPrefix(fmt.Sprintf(format, args...)))
}

// UserErrorf prints a user-facing error to stderr
func UserErrorf(format string, args ...interface{}) {
	writeMu.Lock()
	defer writeMu.Unlock()
	fmt.Fprintf(os.Stderr, "%s\n", errorPrefix(fmt.Sprintf(format, args...)))
}
