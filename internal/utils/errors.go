package utils

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeeftor/rpa-runner/internal/logging"
)

// ErrorExitCode represents different types of errors with their exit codes
type ErrorExitCode int

const (
	ExitCodeGeneral       ErrorExitCode = 1
	ExitCodeConfiguration ErrorExitCode = 2
	ExitCodeValidation    ErrorExitCode = 3
	ExitCodeFileSystem    ErrorExitCode = 4
	ExitCodeFatalRun      ErrorExitCode = 5
)

// Coded is implemented by errors that know which exit code they map to
type Coded interface {
	ExitCode() ErrorExitCode
}

// ExitCodeFor walks the error chain and returns the first code it finds
func ExitCodeFor(err error) ErrorExitCode {
	if err == nil {
		return 0
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitCodeGeneral
}

// ConfigError is a configuration value rejected at the call site, before any run starts
type ConfigError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// ExitCode implements Coded
func (e *ConfigError) ExitCode() ErrorExitCode {
	return ExitCodeConfiguration
}

// NewConfigError builds a ConfigError
func NewConfigError(field string, value interface{}, rule, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Rule: rule, Message: message}
}

// IsConfigError reports whether err wraps a ConfigError
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// FileError is a filesystem failure on a user-supplied path
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ExitCode implements Coded
func (e *FileError) ExitCode() ErrorExitCode {
	return ExitCodeFileSystem
}

// NewFileError wraps err, or returns nil when err is nil
func NewFileError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FileError{Op: op, Path: path, Err: err}
}

// FatalError reports err to the user and exits with its mapped code
func FatalError(err error, context string) {
	logging.UserErrorf("%s: %v", context, err)
	os.Exit(int(ExitCodeFor(err)))
}

// WarnOnError logs a warning for non-fatal errors
func WarnOnError(err error, context string) {
	if err != nil {
		logging.UserWarnf("Warning: %s: %v", context, err)
	}
}

// MultiError represents multiple errors that occurred
type MultiError struct {
	Errors  []error
	Context string
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred: %v (and %d more)", len(m.Errors), m.Errors[0], len(m.Errors)-1)
}

// Unwrap exposes the collected errors to errors.Is / errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// NewMultiError creates a new MultiError
func NewMultiError(context string) *MultiError {
	return &MultiError{
		Context: context,
		Errors:  make([]error, 0),
	}
}

// Add adds an error to the MultiError
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ErrorOrNil returns the MultiError when it holds errors, nil otherwise
func (m *MultiError) ErrorOrNil() error {
	if m.HasErrors() {
		return m
	}
	return nil
}
