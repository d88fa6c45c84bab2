// Package tui is the terminal run monitor: a log pane, a state line and a
// pass counter over a running script, with keys to stop it.
package tui

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeeftor/rpa-runner/internal/runner"
)

// Control is the part of the run controller the monitor drives
type Control interface {
	Stop()
	Passes() int
	Wait() error
}

// LogLineMsg carries one formatted run log line
type LogLineMsg string

// StateMsg carries a controller state change
type StateMsg struct {
	State runner.State
}

// RunDoneMsg is sent once the background run has ended or failed to start
type RunDoneMsg struct {
	Err error
}

type stopDoneMsg struct {
	quit bool
}

// Bridge forwards controller callbacks into a running program. Messages sent
// before Attach are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Attach routes later callbacks to p
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = p.Send
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

// LogLine satisfies logging.LineSink
func (b *Bridge) LogLine(line string) {
	b.emit(LogLineMsg(line))
}

// StateChanged satisfies runner.Options.OnStateChange
func (b *Bridge) StateChanged(state runner.State) {
	b.emit(StateMsg{State: state})
}

// MonitorOptions configures a Monitor
type MonitorOptions struct {
	Script     string
	Hotkey     string
	LoopTarget int
	// Start launches the run. It is called once from Init.
	Start    func() error
	MaxLines int
}

// Monitor is the bubbletea model of the run monitor
type Monitor struct {
	base     *BaseTUIModel
	control  Control
	opts     MonitorOptions
	keys     RunKeyMap
	help     help.Model
	renderer *TUIRenderer
	logs     *LogManager
	progress *ProgressTracker
	viewport viewport.Model

	state    string
	follow   bool
	finished bool
	err      error
}

// NewMonitor creates a monitor over control
func NewMonitor(control Control, opts MonitorOptions) Monitor {
	if opts.MaxLines <= 0 {
		opts.MaxLines = 1000
	}
	base := NewBaseTUIModel(opts.Script)
	m := Monitor{
		base:     base,
		control:  control,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		renderer: NewTUIRenderer(base.State.Width),
		logs:     NewLogManager(opts.MaxLines),
		progress: NewProgressTracker(opts.LoopTarget),
		state:    runner.Idle.String(),
		follow:   true,
	}
	m.viewport = viewport.New(base.State.Width, base.State.Height)
	m.resize()
	return m
}

// Init starts the run and the uptime ticker
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.base.TickCmd(), m.startCmd())
}

func (m Monitor) startCmd() tea.Cmd {
	start, control := m.opts.Start, m.control
	return func() tea.Msg {
		if start != nil {
			if err := start(); err != nil {
				return RunDoneMsg{Err: err}
			}
		}
		return RunDoneMsg{Err: control.Wait()}
	}
}

// stopCmd stops the run off the update loop; Stop notifies through the program
func (m Monitor) stopCmd(quit bool) tea.Cmd {
	control := m.control
	return func() tea.Msg {
		control.Stop()
		return stopDoneMsg{quit: quit}
	}
}

// Update handles messages
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.base.HandleWindowResize(msg)
		m.renderer.UpdateDimensions(msg.Width)
		m.resize()
		return m, nil

	case TickMsg:
		m.progress.Update(m.control.Passes())
		return m, m.base.TickCmd()

	case LogLineMsg:
		m.appendLog(string(msg), ClassifyLine(string(msg)))
		m.progress.Update(m.control.Passes())
		return m, nil

	case StateMsg:
		m.state = msg.State.String()
		m.progress.Update(m.control.Passes())
		return m, nil

	case RunDoneMsg:
		m.finished = true
		m.err = msg.Err
		m.state = runner.Idle.String()
		m.progress.Update(m.control.Passes())
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("run failed: %v", msg.Err), LogLevelError)
		}
		return m, nil

	case stopDoneMsg:
		if msg.quit {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.base.State.Quitting = true
			return m, m.stopCmd(true)
		case key.Matches(msg, m.keys.Stop):
			if m.finished {
				return m, nil
			}
			return m, m.stopCmd(false)
		case key.Matches(msg, m.keys.Follow):
			m.follow = true
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.viewport.AtBottom()
		return m, cmd
	}

	return m, nil
}

func (m *Monitor) appendLog(line string, level LogLevel) {
	m.logs.Add(line, level)
	m.viewport.SetContent(m.renderer.RenderLogEntries(m.logs.GetEntries()))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// resize fits the log pane between the header and the footer
func (m *Monitor) resize() {
	header := 2
	if m.progress.Bounded() {
		header++
	}
	footer := 1
	frameW, frameH := BoxStyle.GetFrameSize()

	width := m.base.State.Width - frameW
	height := m.base.State.Height - header - footer - frameH
	if width < 10 {
		width = 10
	}
	if height < 3 {
		height = 3
	}
	m.viewport.Width = width
	m.viewport.Height = height
	m.help.Width = m.base.State.Width
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// View renders the monitor
func (m Monitor) View() string {
	if m.base.IsQuitting() {
		return MutedStyle.Render("Stopping run...") + "\n"
	}

	title := fmt.Sprintf("RPA Runner - %s", filepath.Base(m.opts.Script))
	if m.finished {
		title += " (finished)"
	}

	sections := []string{
		m.renderer.RenderTitle(title),
		m.renderer.RenderStatus(StatusInfo{
			State:  m.state,
			Passes: m.progress.Current,
			Target: m.progress.Total,
			Uptime: m.base.GetUptime(),
			Hotkey: m.opts.Hotkey,
		}),
	}
	if m.progress.Bounded() {
		sections = append(sections, m.renderer.RenderProgressBar(m.progress.GetProgress(), 30))
	}
	sections = append(sections,
		BoxStyle.Render(m.viewport.View()),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// State returns the last state shown
func (m Monitor) State() string {
	return m.state
}

// Finished reports whether the run has ended
func (m Monitor) Finished() bool {
	return m.finished
}

// Err returns the run's fatal error, if any
func (m Monitor) Err() error {
	return m.err
}

// LogLines returns how many log lines are retained
func (m Monitor) LogLines() int {
	return m.logs.Len()
}
