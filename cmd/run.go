package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeeftor/rpa-runner/internal/hotkey/hook"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/params"
	"github.com/jeeftor/rpa-runner/internal/runner"
	"github.com/jeeftor/rpa-runner/internal/screen/robot"
	"github.com/jeeftor/rpa-runner/internal/tui"
	"github.com/jeeftor/rpa-runner/internal/validation"
)

var (
	runMode     string
	runLoops    string
	runInterval float64
	runHotkey   string
	runTUI      bool
)

// runSettings is everything resolved for one run
type runSettings struct {
	script   string
	interval float64
	hotkey   string
	mode     runner.Mode
	loops    int
}

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run a spreadsheet script",
	Long: `Run the rows of a script (.xlsx or .csv) against the desktop.

Column 1 is the action kind, column 2 its value and column 3 the retry count:
  1 click image    2 double click image    3 right click image
  4 paste text     5 wait seconds          6 scroll by delta
  7 click at "x;y"

Retry: empty or 0 means the default policy, -1 repeats until stopped, and
N > 1 repeats N times. Image paths are resolved against the script's folder,
the program folder and the working directory, in that order.

The run stops when the stop hotkey is pressed, on Ctrl+C, or with "s" in the
--tui monitor.

Examples:
  rpa run jobs.xlsx
  rpa run jobs.xlsx --mode loop --loops 10
  rpa run jobs.csv --interval 0.2 --hotkey ctrl+alt+x --tui
  RPA_SCRIPT=jobs.xlsx rpa run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := resolveRunSettings(cmd, args)
		if err != nil {
			return err
		}

		useTUI := runTUI && term.IsTerminal(int(os.Stdout.Fd()))
		if runTUI && !useTUI {
			logging.UserWarnf("--tui needs an interactive terminal, continuing without it")
		}
		if useTUI {
			return runWithMonitor(settings)
		}
		return runHeadless(settings)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", `run mode: "once" or "loop" (env RPA_MODE)`)
	runCmd.Flags().StringVarP(&runLoops, "loops", "n", "", "passes in loop mode, 0 until stopped (env RPA_LOOP_COUNT)")
	runCmd.Flags().Float64VarP(&runInterval, "interval", "i", 0, "seconds between retry attempts (env RPA_INTERVAL, default 0.01)")
	runCmd.Flags().StringVarP(&runHotkey, "hotkey", "k", "", "global stop hotkey (env RPA_STOP_HOTKEY, default ctrl+shift+q)")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "show the interactive run monitor")

	rootCmd.AddCommand(runCmd)
}

// resolveRunSettings merges args, flags, environment and config, then validates them
func resolveRunSettings(cmd *cobra.Command, args []string) (runSettings, error) {
	resolver := params.NewParameterResolver()

	script, err := resolver.ResolveScriptWithInfo(args, 0)
	if err != nil {
		return runSettings{}, err
	}
	interval, intervalInfo, err := resolver.ResolveIntervalWithInfo(runInterval, cmd.Flags().Changed("interval"))
	if err != nil {
		return runSettings{}, err
	}
	hotkeyInfo := resolver.ResolveStopHotkeyWithInfo(runHotkey, cmd.Flags().Changed("hotkey"))
	modeInfo := resolver.ResolveModeWithInfo(runMode, cmd.Flags().Changed("mode"))
	loopsInfo := resolver.ResolveLoopCountWithInfo(runLoops, cmd.Flags().Changed("loops"))

	logging.Debug("Run parameters resolved",
		"script", script.Value, "script_source", script.Source,
		"interval", interval, "interval_source", intervalInfo.Source,
		"hotkey", hotkeyInfo.Value, "hotkey_source", hotkeyInfo.Source,
		"mode", modeInfo.Value, "mode_source", modeInfo.Source,
		"loops", loopsInfo.Value, "loops_source", loopsInfo.Source)

	mode, err := runner.ParseMode(modeInfo.Value)
	if err != nil {
		return runSettings{}, err
	}
	loops, err := runner.ParseLoopCount(loopsInfo.Value)
	if err != nil {
		return runSettings{}, err
	}

	result := validation.ValidateRunOptions(validation.RunOptions{
		Script:     script.Value,
		Interval:   interval,
		StopHotkey: hotkeyInfo.Value,
		Mode:       modeInfo.Value,
		LoopCount:  loops,
		LogLevel:   logLevel,
	})
	for _, warning := range result.Warnings {
		logging.UserWarnf("Warning: %s", warning)
	}
	if err := result.Err(); err != nil {
		return runSettings{}, err
	}

	return runSettings{
		script:   script.Value,
		interval: interval,
		hotkey:   hotkeyInfo.Value,
		mode:     mode,
		loops:    loops,
	}, nil
}

func newController(s runSettings, onLine logging.LineSink, onState func(runner.State)) (*runner.Controller, error) {
	return runner.New(runner.Options{
		Provider:      robot.New(),
		Hotkeys:       hook.NewRegistrar(),
		OnLogLine:     onLine,
		OnStateChange: onState,
		Interval:      s.interval,
		StopHotkey:    s.hotkey,
	})
}

// stopOnSignal routes SIGINT/SIGTERM to the controller
func stopOnSignal(ctl *runner.Controller) {
	if contextManager == nil {
		return
	}
	contextManager.OnShutdown(func(context.Context) error {
		ctl.Stop()
		return nil
	})
}

func runHeadless(s runSettings) error {
	ctl, err := newController(s, nil, nil)
	if err != nil {
		return err
	}
	stopOnSignal(ctl)

	if err := ctl.Start(s.script, s.mode, s.loops); err != nil {
		return err
	}
	logging.UserInfof("Running %s (%s). Press %s to stop.", s.script, describeMode(s), ctl.Config().StopHotkey)

	if err := ctl.Wait(); err != nil {
		return err
	}
	logging.Successf("Done after %d pass(es)", ctl.Passes())
	return nil
}

func runWithMonitor(s runSettings) error {
	bridge := &tui.Bridge{}
	ctl, err := newController(s, bridge.LogLine, bridge.StateChanged)
	if err != nil {
		return err
	}

	var closed atomic.Bool
	target := 0
	if s.mode == runner.Loop {
		target = s.loops
	}
	monitor := tui.NewMonitor(ctl, tui.MonitorOptions{
		Script:     s.script,
		Hotkey:     ctl.Config().StopHotkey,
		LoopTarget: target,
		Start: func() error {
			if closed.Load() {
				return runner.ErrBusy
			}
			return ctl.Start(s.script, s.mode, s.loops)
		},
	})

	// The monitor owns the terminal; slog output would tear the screen
	logging.SetOutput(io.Discard)
	defer logging.SetOutput(os.Stdout)

	program := tea.NewProgram(monitor, tea.WithAltScreen())
	bridge.Attach(program)
	stopOnSignal(ctl)
	if contextManager != nil {
		contextManager.OnShutdown(func(context.Context) error {
			program.Quit()
			return nil
		})
	}

	final, err := program.Run()
	closed.Store(true)
	ctl.Stop()
	runErr := ctl.Wait()
	if err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	if m, ok := final.(tui.Monitor); ok && m.Err() != nil && runErr == nil {
		runErr = m.Err()
	}
	return runErr
}

func describeMode(s runSettings) string {
	if s.mode == runner.Once {
		return "once"
	}
	if s.loops == 0 {
		return "loop until stopped"
	}
	return fmt.Sprintf("loop %d times", s.loops)
}
