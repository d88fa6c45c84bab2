package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeeftor/rpa-runner/internal/utils"
)

// Mode selects a single pass or repeated passes
type Mode int

const (
	Once Mode = iota
	Loop
)

// String returns a human-readable representation of the Mode
func (m Mode) String() string {
	switch m {
	case Once:
		return "once"
	case Loop:
		return "loop"
	default:
		return "unknown"
	}
}

// ParseMode accepts "once" or "loop" in any case
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "once", "":
		return Once, nil
	case "loop":
		return Loop, nil
	default:
		return Once, utils.NewConfigError("mode", s, "oneof", `must be "once" or "loop"`)
	}
}

// ParseLoopCount accepts a non-negative integer. Empty means 0, which loops until stopped.
func ParseLoopCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, utils.NewConfigError("loop count", s, "numeric", "must be a whole number")
	}
	if n < 0 {
		return 0, utils.NewConfigError("loop count", s, "min", "must be 0 (until stopped) or more")
	}
	return n, nil
}

// State is the controller's lifecycle position
type State int

const (
	Idle State = iota
	Validating
	Running
	Stopping
)

// String returns a human-readable representation of the State
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyRunning rejects Start while a run is active
	ErrAlreadyRunning = errors.New("a run is already active")
	// ErrBusy rejects Start and configuration changes while a stopped run winds down
	ErrBusy = errors.New("the previous run is still stopping")
)

// FatalRunError ends a run before or between actions: unreadable script, no display
type FatalRunError struct {
	Op  string
	Err error
}

func (e *FatalRunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalRunError) Unwrap() error {
	return e.Err
}

// ExitCode implements utils.Coded
func (e *FatalRunError) ExitCode() utils.ErrorExitCode {
	return utils.ExitCodeFatalRun
}

// RunConfig is a snapshot of the run settings
type RunConfig struct {
	Interval   float64 `yaml:"interval" json:"interval"`
	StopHotkey string  `yaml:"stop_hotkey" json:"stop_hotkey"`
	BaseDir    string  `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
	Mode       Mode    `yaml:"-" json:"-"`
	LoopCount  int     `yaml:"-" json:"-"`
}
