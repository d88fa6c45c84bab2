// Package dispatch executes validated script rows against a screen provider.
package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/filesystem"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/pathres"
	"github.com/jeeftor/rpa-runner/internal/retry"
	"github.com/jeeftor/rpa-runner/internal/runflag"
	"github.com/jeeftor/rpa-runner/internal/screen"
	"github.com/jeeftor/rpa-runner/internal/script"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

// Result is what happened to one row
type Result int

const (
	Applied Result = iota
	Skipped
	Interrupted
	NotStarted
)

// String returns a human-readable representation of the Result
func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Interrupted:
		return "interrupted"
	case NotStarted:
		return "not_started"
	default:
		return "unknown"
	}
}

// ErrNotFound is wrapped when an image never matched
var ErrNotFound = errors.New("image not found on screen")

// ActionError is a failure local to one row. It is logged and the pass continues.
type ActionError struct {
	Row  int
	Kind script.Kind
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Kind, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ExitCode implements utils.Coded
func (e *ActionError) ExitCode() utils.ErrorExitCode {
	return utils.ExitCodeGeneral
}

// Config wires a Dispatcher
type Config struct {
	Provider   screen.Automation
	Signal     runflag.Signal
	Resolver   pathres.Resolver
	Interval   time.Duration
	PasteDelay time.Duration
	Log        *logging.ContextualLogger
}

// Dispatcher runs rows one at a time. It is not safe for concurrent use.
type Dispatcher struct {
	provider   screen.Automation
	signal     runflag.Signal
	resolver   pathres.Resolver
	pasteDelay time.Duration
	log        *logging.ContextualLogger

	images *retry.ImagePolicy
	points *retry.CoordinatePolicy
}

// New builds a Dispatcher. A zero PasteDelay means the default settle delay.
func New(cfg Config) *Dispatcher {
	if cfg.PasteDelay == 0 {
		cfg.PasteDelay = constants.PasteSettleDelay
	}
	log := cfg.Log
	if log == nil {
		log = logging.NewContextualLogger("", "dispatch")
	}
	return &Dispatcher{
		provider:   cfg.Provider,
		signal:     cfg.Signal,
		resolver:   cfg.Resolver,
		pasteDelay: cfg.PasteDelay,
		log:        log,
		images:     retry.NewImagePolicy(cfg.Provider, cfg.Signal, cfg.Interval, log.WithComponent("retry")),
		points:     retry.NewCoordinatePolicy(cfg.Provider, cfg.Signal, cfg.Interval, log.WithComponent("retry")),
	}
}

// Execute runs one row. Failures become Skipped and are logged; they never
// escape. A cleared flag before the row yields NotStarted.
func (d *Dispatcher) Execute(row script.Row) (result Result) {
	if !d.signal.IsSet() {
		return NotStarted
	}

	defer func() {
		if p := recover(); p != nil {
			d.skip(&ActionError{Row: row.Number, Kind: row.Kind, Err: fmt.Errorf("provider panic: %v", p)})
			result = Skipped
		}
	}()

	res, err := d.apply(row)
	if err != nil {
		d.skip(&ActionError{Row: row.Number, Kind: row.Kind, Err: err})
		return Skipped
	}
	return res
}

func (d *Dispatcher) skip(err *ActionError) {
	d.log.Warn(logging.SkipTemplate.Formatf("skipped row %d: %v", err.Row, err.Err), "kind", err.Kind.String())
}

func (d *Dispatcher) apply(row script.Row) (Result, error) {
	switch a := row.Action.(type) {
	case script.ImageClick:
		return d.clickImage(row, a)

	case script.PasteText:
		d.log.Info(logging.PasteTemplate.Format(preview(a.Text)), "row", row.Number)
		if err := d.provider.Paste(a.Text); err != nil {
			return Skipped, err
		}
		if !d.signal.Sleep(d.pasteDelay) {
			return Interrupted, nil
		}
		return Applied, nil

	case script.Pause:
		if a.Seconds < 0 {
			return Skipped, fmt.Errorf("negative wait %gs", a.Seconds)
		}
		d.log.Info(logging.WaitTemplate.Formatf("%gs", a.Seconds), "row", row.Number)
		if !d.signal.Sleep(constants.GetInterval(a.Seconds)) {
			return Interrupted, nil
		}
		return Applied, nil

	case script.ScrollBy:
		d.log.Info(logging.ScrollTemplate.Formatf("%d", a.Delta), "row", row.Number)
		if err := d.provider.Scroll(a.Delta); err != nil {
			return Skipped, err
		}
		return Applied, nil

	case script.PointClick:
		d.log.Info(logging.PointTemplate.Format(a.At.String()), "row", row.Number, "retry", row.Retry)
		out, err := d.points.Attempt(a.At, row.Retry)
		if err != nil {
			return Skipped, err
		}
		return d.settle(out), nil

	default:
		return Skipped, fmt.Errorf("unsupported action %T", row.Action)
	}
}

func (d *Dispatcher) clickImage(row script.Row, a script.ImageClick) (Result, error) {
	path := d.resolver.Resolve(a.Image)
	if !filesystem.FileExists(path) {
		return Skipped, fmt.Errorf("%w: %s (tried %s)", screen.ErrImageMissing, a.Image, strings.Join(d.resolver.Candidates(a.Image), ", "))
	}

	d.log.Info(clickTemplate(row.Kind).Format(a.Image), "row", row.Number, "retry", row.Retry)
	target := retry.ImageTarget{Path: path, Button: a.Button, Clicks: a.Clicks}
	out, err := d.images.Attempt(target, row.Retry)
	if err != nil {
		return Skipped, err
	}
	if !out.Succeeded() && !out.Cancelled {
		return Skipped, fmt.Errorf("%w: %s after %d attempts", ErrNotFound, path, out.Attempts)
	}
	d.log.Debug("Image policy finished", "row", row.Number, "outcome", out.String())
	return d.settle(out), nil
}

// settle maps a policy outcome onto a row result
func (d *Dispatcher) settle(out retry.Outcome) Result {
	if out.Cancelled && !out.Succeeded() {
		return Interrupted
	}
	return Applied
}

func clickTemplate(kind script.Kind) logging.LogTemplate {
	switch kind {
	case script.DoubleClick:
		return logging.DoubleClickTemplate
	case script.RightClick:
		return logging.RightClickTemplate
	default:
		return logging.ClickTemplate
	}
}

func preview(text string) string {
	const limit = 40
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "..."
}

// PassSummary counts the row results of one pass
type PassSummary struct {
	Applied     int
	Skipped     int
	Interrupted bool
}

// RunPass executes rows in order, stopping before the next row once the flag clears
func (d *Dispatcher) RunPass(rows []script.Row) PassSummary {
	var sum PassSummary
	for _, row := range rows {
		switch d.Execute(row) {
		case Applied:
			sum.Applied++
		case Skipped:
			sum.Skipped++
		case Interrupted, NotStarted:
			sum.Interrupted = true
			return sum
		}
	}
	return sum
}
