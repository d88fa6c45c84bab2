// Package runner owns the run lifecycle: the cancellation flag, the single
// background task, and the stop hotkey binding.
package runner

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/dispatch"
	"github.com/jeeftor/rpa-runner/internal/filesystem"
	"github.com/jeeftor/rpa-runner/internal/hotkey"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/pathres"
	"github.com/jeeftor/rpa-runner/internal/runflag"
	"github.com/jeeftor/rpa-runner/internal/screen"
	"github.com/jeeftor/rpa-runner/internal/script"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

// Options wires a Controller. Provider is required.
type Options struct {
	Provider screen.Automation
	// Hotkeys may be nil, in which case no stop hotkey is bound
	Hotkeys hotkey.Registrar
	// OpenSource defaults to sheet.Open
	OpenSource func(path string) (sheet.Source, error)

	// OnLogLine receives every info-and-above log line of a run
	OnLogLine logging.LineSink
	// OnStateChange is called in transition order. It must not call Stop synchronously.
	OnStateChange func(State)

	Interval    float64
	StopHotkey  string
	CursorDelay time.Duration
	PasteDelay  time.Duration

	// ProgramDir and WorkDir are image search locations after the script's own directory
	ProgramDir string
	WorkDir    string
}

// Controller runs at most one script at a time
type Controller struct {
	opts Options
	log  *logging.ContextualLogger
	flag *runflag.Flag

	mu       sync.Mutex
	notifyMu sync.Mutex
	state    State
	interval float64
	combo    hotkey.Combo
	baseDir  string
	mode     Mode
	loops    int
	bound    bool
	done     chan struct{}
	lastErr  error

	passes atomic.Int64
}

// New validates opts and returns an idle controller
func New(opts Options) (*Controller, error) {
	if opts.Provider == nil {
		return nil, &FatalRunError{Op: "create controller", Err: screen.ErrUnavailable}
	}
	if opts.OpenSource == nil {
		opts.OpenSource = sheet.Open
	}
	if opts.StopHotkey == "" {
		opts.StopHotkey = constants.DefaultStopHotkey
	}
	if opts.CursorDelay == 0 {
		opts.CursorDelay = constants.CursorSampleDelay
	}
	if opts.ProgramDir == "" {
		opts.ProgramDir = filesystem.ExecutableDir()
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		}
	}

	c := &Controller{
		opts:     opts,
		log:      logging.NewContextualLogger("", "runner").WithSink(opts.OnLogLine),
		flag:     runflag.New(),
		interval: constants.DefaultInterval.Seconds(),
	}
	if opts.Interval != 0 {
		if err := c.SetInterval(opts.Interval); err != nil {
			return nil, err
		}
	}
	if err := c.SetStopHotkey(opts.StopHotkey); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsRunning reports whether the cancellation flag is raised
func (c *Controller) IsRunning() bool {
	return c.flag.IsSet()
}

// Passes returns how many passes the current or last run has started
func (c *Controller) Passes() int {
	return int(c.passes.Load())
}

// Config returns a snapshot of the run settings
func (c *Controller) Config() RunConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RunConfig{
		Interval:   c.interval,
		StopHotkey: c.combo.String(),
		BaseDir:    c.baseDir,
		Mode:       c.mode,
		LoopCount:  c.loops,
	}
}

// SetInterval sets the delay between attempts and between passes. Rejected while a run is active.
func (c *Controller) SetInterval(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return utils.NewConfigError("interval", seconds, "gte=0", "must be a number of seconds, 0 or more")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.idleLocked("interval"); err != nil {
		return err
	}
	c.interval = seconds
	return nil
}

// SetStopHotkey validates and stores the stop combo. Rejected while a run is active.
func (c *Controller) SetStopHotkey(combo string) error {
	parsed, err := hotkey.Parse(combo)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.idleLocked("stop hotkey"); err != nil {
		return err
	}
	c.combo = parsed
	return nil
}

func (c *Controller) idleLocked(field string) error {
	if c.state != Idle {
		return utils.NewConfigError(field, nil, "idle", "cannot be changed while a run is active")
	}
	return nil
}

// Start validates the call, binds the stop hotkey, raises the flag and
// launches the background task. It does not wait for the task.
func (c *Controller) Start(source string, mode Mode, loopCount int) error {
	if mode != Once && mode != Loop {
		return utils.NewConfigError("mode", mode, "oneof", `must be "once" or "loop"`)
	}
	if loopCount < 0 {
		return utils.NewConfigError("loop count", loopCount, "min", "must be 0 (until stopped) or more")
	}
	if err := filesystem.CheckFileExists(source); err != nil {
		return &FatalRunError{Op: "open script", Err: err}
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return &FatalRunError{Op: "open script", Err: err}
	}

	c.mu.Lock()
	switch c.state {
	case Validating, Running:
		c.mu.Unlock()
		return ErrAlreadyRunning
	case Stopping:
		c.mu.Unlock()
		return ErrBusy
	}

	c.baseDir = filepath.Dir(abs)
	c.mode = mode
	c.loops = loopCount
	c.lastErr = nil
	c.passes.Store(0)
	c.done = make(chan struct{})
	c.flag.Set()
	bindErr := c.bindHotkeyLocked()

	task := runTask{
		source:   abs,
		mode:     mode,
		loops:    loopCount,
		interval: constants.GetInterval(c.interval),
		combo:    c.combo,
		resolver: pathres.Resolver{ScriptDir: c.baseDir, ProgramDir: c.opts.ProgramDir, WorkDir: c.opts.WorkDir},
		done:     c.done,
	}
	c.transitionAndUnlock(Validating)

	if bindErr != nil {
		c.log.Warn("Stop hotkey unavailable, use the stop command instead", "hotkey", task.combo.String(), "error", bindErr)
	}
	go c.run(task)
	return nil
}

func (c *Controller) bindHotkeyLocked() error {
	if c.opts.Hotkeys == nil || c.combo.IsZero() {
		return nil
	}
	if err := c.opts.Hotkeys.Register(c.combo, c.Stop); err != nil {
		return err
	}
	c.bound = true
	return nil
}

func (c *Controller) unbindHotkeyLocked() {
	if !c.bound {
		return
	}
	c.bound = false
	if err := c.opts.Hotkeys.Unregister(c.combo); err != nil {
		logging.Debug("Unregister stop hotkey failed", "hotkey", c.combo.String(), "error", err)
	}
}

// transitionAndUnlock changes state, releases c.mu and reports the change.
// The callback runs before any later transition is reported.
func (c *Controller) transitionAndUnlock(s State) {
	c.state = s
	if c.opts.OnStateChange == nil {
		c.mu.Unlock()
		return
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	c.opts.OnStateChange(s)
	c.notifyMu.Unlock()
}

// Stop clears the flag and unbinds the hotkey. It is idempotent, safe from any
// goroutine, and does not wait for the task to notice.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != Validating && c.state != Running {
		c.mu.Unlock()
		return
	}
	c.flag.Clear()
	c.unbindHotkeyLocked()
	c.transitionAndUnlock(Stopping)
	c.log.Info(logging.StopTemplate.Format("stop requested"))
}

// Wait blocks until the active run, if any, finishes and returns its fatal or
// validation error
func (c *Controller) Wait() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Done returns a channel closed when the active run finishes, nil before the first run
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// GetCurrentCursorPosition waits the cursor sample delay, then reads the pointer position
func (c *Controller) GetCurrentCursorPosition(ctx context.Context) (screen.Position, error) {
	timer := time.NewTimer(c.opts.CursorDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return screen.Position{}, ctx.Err()
	case <-timer.C:
	}
	pos, err := c.opts.Provider.CursorPosition()
	if err != nil {
		return screen.Position{}, fmt.Errorf("read cursor position: %w", err)
	}
	return pos, nil
}

type runTask struct {
	source   string
	mode     Mode
	loops    int
	interval time.Duration
	combo    hotkey.Combo
	resolver pathres.Resolver
	done     chan struct{}
}

func (c *Controller) run(task runTask) {
	log := c.log.WithComponent("run")
	var runErr error
	defer func() {
		if p := recover(); p != nil {
			runErr = &FatalRunError{Op: "run", Err: fmt.Errorf("panic: %v", p)}
			log.Error(logging.FailTemplate.Format(runErr.Error()))
		}
		c.finish(task, runErr)
	}()

	log.Info(logging.LoadTemplate.Format(task.source))
	src, err := c.opts.OpenSource(task.source)
	if err != nil {
		runErr = &FatalRunError{Op: "open script", Err: err}
		log.Error(logging.FailTemplate.Format(runErr.Error()))
		return
	}
	if checker, ok := c.opts.Provider.(screen.Checker); ok {
		if err := checker.Available(); err != nil {
			runErr = &FatalRunError{Op: "screen provider", Err: err}
			log.Error(logging.FailTemplate.Format(runErr.Error()))
			return
		}
	}

	rows, err := script.Validate(src)
	if err != nil {
		runErr = err
		log.Error(logging.FailTemplate.Format("validation: "+err.Error()))
		return
	}
	log.Info(fmt.Sprintf("Script valid: %d rows", len(rows)))

	c.mu.Lock()
	if c.state != Validating {
		c.mu.Unlock()
		return
	}
	c.transitionAndUnlock(Running)

	log.Info(logging.StartTemplate.Formatf("%s, press %s to stop", describe(task), task.combo),
		"interval", task.interval.String())

	d := dispatch.New(dispatch.Config{
		Provider:   c.opts.Provider,
		Signal:     c.flag,
		Resolver:   task.resolver,
		Interval:   task.interval,
		PasteDelay: c.opts.PasteDelay,
		Log:        c.log.WithComponent("dispatch"),
	})

	if task.mode == Once {
		c.passes.Store(1)
		c.report(log, 1, d.RunPass(rows))
		return
	}

	for pass := 1; task.loops == 0 || pass <= task.loops; pass++ {
		if !c.flag.IsSet() {
			return
		}
		c.passes.Store(int64(pass))
		log.Info(logging.PassTemplate.Formatf("pass %d", pass))
		sum := d.RunPass(rows)
		c.report(log, pass, sum)
		if sum.Interrupted {
			return
		}
		if task.loops != 0 && pass == task.loops {
			return
		}
		if !c.flag.Sleep(task.interval) {
			return
		}
	}
}

func (c *Controller) report(log *logging.ContextualLogger, pass int, sum dispatch.PassSummary) {
	log.Debug("Pass finished", "pass", pass, "applied", sum.Applied, "skipped", sum.Skipped, "interrupted", sum.Interrupted)
	if sum.Skipped > 0 {
		log.Warn(fmt.Sprintf("pass %d skipped %d row(s)", pass, sum.Skipped))
	}
}

func describe(task runTask) string {
	switch {
	case task.mode == Once:
		return "single pass"
	case task.loops == 0:
		return "looping until stopped"
	default:
		return fmt.Sprintf("looping %d times", task.loops)
	}
}

// finish returns the controller to Idle. It is the only place a run ends.
func (c *Controller) finish(task runTask, runErr error) {
	c.mu.Lock()
	stopped := c.state == Stopping
	c.flag.Clear()
	c.unbindHotkeyLocked()
	c.lastErr = runErr
	c.transitionAndUnlock(Idle)

	switch {
	case runErr != nil:
	case stopped:
		c.log.Info(logging.StopTemplate.Format("run stopped"), "passes", c.passes.Load())
	default:
		c.log.Info(logging.CompleteTemplate.Format("run finished"), "passes", c.passes.Load())
	}
	close(task.done)
}
