package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeeftor/rpa-runner/internal/hotkey/hotkeytest"
	"github.com/jeeftor/rpa-runner/internal/screen"
	"github.com/jeeftor/rpa-runner/internal/screen/screentest"
	"github.com/jeeftor/rpa-runner/internal/script"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	lines  []string
	states []State
}

func (r *recorder) line(s string) {
	r.mu.Lock()
	r.lines = append(r.lines, s)
	r.mu.Unlock()
}

func (r *recorder) state(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func (r *recorder) transitions() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

type fixture struct {
	t    *testing.T
	dir  string
	path string
	fake *screentest.Fake
	keys *hotkeytest.Recorder
	rec  *recorder
	grid *sheet.Grid
	ctl  *Controller
}

func newFixture(t *testing.T, rows ...[]any) *fixture {
	t.Helper()
	f := &fixture{
		t:    t,
		dir:  t.TempDir(),
		fake: screentest.NewFake(),
		keys: hotkeytest.NewRecorder(),
		rec:  &recorder{},
		grid: sheet.NewGrid(append([][]any{{"Kind", "Value", "Retry"}}, rows...)...),
	}
	f.path = filepath.Join(f.dir, "script.xlsx")
	require.NoError(t, os.WriteFile(f.path, []byte("stub"), 0644))

	ctl, err := New(Options{
		Provider:      f.fake,
		Hotkeys:       f.keys,
		OpenSource:    func(string) (sheet.Source, error) { return f.grid, nil },
		OnLogLine:     f.rec.line,
		OnStateChange: f.rec.state,
		Interval:      0.001,
		CursorDelay:   time.Millisecond,
		PasteDelay:    time.Millisecond,
		WorkDir:       t.TempDir(),
		ProgramDir:    t.TempDir(),
	})
	require.NoError(t, err)
	f.ctl = ctl
	return f
}

func (f *fixture) image(name string) string {
	p := filepath.Join(f.dir, name)
	require.NoError(f.t, os.WriteFile(p, []byte("png"), 0644))
	return p
}

func (f *fixture) waitIdle() error {
	f.t.Helper()
	done := make(chan error, 1)
	go func() { done <- f.ctl.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		f.t.Fatal("run did not finish")
		return nil
	}
}

func TestOncePassRunsRowsInOrder(t *testing.T) {
	f := newFixture(t,
		[]any{7, "1;1"},
		[]any{4, "hi"},
		[]any{6, 2},
	)

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	require.NoError(t, f.waitIdle())

	assert.Equal(t, []string{"click", "paste", "scroll"}, f.fake.Ops())
	assert.Equal(t, Idle, f.ctl.State())
	assert.False(t, f.ctl.IsRunning())
	assert.Equal(t, 1, f.ctl.Passes())
	assert.Equal(t, []State{Validating, Running, Idle}, f.rec.transitions())
	assert.Equal(t, 1, f.rec.count("run finished"))
}

func TestLoopRunsExactlyNPasses(t *testing.T) {
	f := newFixture(t, []any{7, "1;1"}, []any{6, 1})

	require.NoError(t, f.ctl.Start(f.path, Loop, 3))
	require.NoError(t, f.waitIdle())

	assert.Len(t, f.fake.Clicks(), 3)
	assert.Equal(t, []string{"click", "scroll", "click", "scroll", "click", "scroll"}, f.fake.Ops())
	assert.Equal(t, 3, f.ctl.Passes())
	assert.Equal(t, 1, f.rec.count("pass 3"))
}

func TestLoopForeverUntilStop(t *testing.T) {
	f := newFixture(t, []any{7, "1;1"})
	f.fake.OnClick = func(n int) {
		if n == 25 {
			go f.ctl.Stop()
		}
	}

	require.NoError(t, f.ctl.Start(f.path, Loop, 0))
	require.NoError(t, f.waitIdle())

	clicks := len(f.fake.Clicks())
	assert.GreaterOrEqual(t, clicks, 25)
	assert.Less(t, clicks, 60, "the run ends shortly after Stop")
	assert.Contains(t, f.rec.transitions(), Stopping)
	assert.Equal(t, Idle, f.rec.transitions()[len(f.rec.transitions())-1])
}

func TestStopCutsLoopShort(t *testing.T) {
	f := newFixture(t, []any{7, "1;1"}, []any{7, "2;2"}, []any{7, "3;3"})
	f.fake.OnClick = func(n int) {
		if n == 4 {
			f.ctl.flag.Clear()
		}
	}

	require.NoError(t, f.ctl.Start(f.path, Loop, 5))
	require.NoError(t, f.waitIdle())

	assert.Len(t, f.fake.Clicks(), 4, "no row runs after the flag clears")
	assert.Equal(t, 2, f.ctl.Passes())
}

func TestHotkeyStopsRun(t *testing.T) {
	f := newFixture(t, []any{5, 3600})

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	require.Eventually(t, func() bool { return f.keys.Registered("ctrl+shift+q") }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return f.ctl.State() == Running }, time.Second, time.Millisecond)

	require.True(t, f.keys.Fire("ctrl+shift+q"))
	require.NoError(t, f.waitIdle())

	assert.False(t, f.keys.Registered("ctrl+shift+q"))
	assert.Equal(t, []string{"register ctrl+shift+q", "unregister ctrl+shift+q"}, f.keys.History())
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(t, []any{5, 3600})
	f.ctl.Stop()

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.ctl.Stop()
		}()
	}
	require.True(t, f.keys.Fire("ctrl+shift+q") || !f.keys.Registered("ctrl+shift+q"))
	wg.Wait()
	require.NoError(t, f.waitIdle())

	stopping := 0
	for _, s := range f.rec.transitions() {
		if s == Stopping {
			stopping++
		}
	}
	assert.Equal(t, 1, stopping)
	assert.Equal(t, 1, len(filterHistory(f.keys.History(), "unregister")))
}

func filterHistory(h []string, prefix string) []string {
	var out []string
	for _, e := range h {
		if strings.HasPrefix(e, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func TestStartRejectedWhileActive(t *testing.T) {
	f := newFixture(t, []any{5, 3600})

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	assert.ErrorIs(t, f.ctl.Start(f.path, Once, 0), ErrAlreadyRunning)

	f.ctl.Stop()
	require.NoError(t, f.waitIdle())
	require.NoError(t, f.ctl.Start(f.path, Once, 0), "a new run may start once idle")
	f.ctl.Stop()
	require.NoError(t, f.waitIdle())
}

func TestStartRejectsBadArguments(t *testing.T) {
	f := newFixture(t, []any{6, 1})

	err := f.ctl.Start(f.path, Loop, -1)
	assert.True(t, utils.IsConfigError(err))

	err = f.ctl.Start(filepath.Join(f.dir, "missing.xlsx"), Once, 0)
	var fatal *FatalRunError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, utils.ExitCodeFatalRun, utils.ExitCodeFor(err))

	assert.Equal(t, Idle, f.ctl.State())
	assert.Empty(t, f.keys.History(), "rejected starts never bind the hotkey")
}

func TestValidationFailureReturnsToIdle(t *testing.T) {
	f := newFixture(t, []any{6, 1}, []any{9, "bad"})

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	err := f.waitIdle()

	var verr *script.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 3, verr.Row)
	assert.Empty(t, f.fake.Calls(), "nothing runs when validation fails")
	assert.Equal(t, []State{Validating, Idle}, f.rec.transitions())
	assert.False(t, f.keys.Registered("ctrl+shift+q"))
	assert.Equal(t, 1, f.rec.count("row 3 column 1 invalid"))
}

func TestUnreadableSourceIsFatal(t *testing.T) {
	f := newFixture(t)
	f.ctl.opts.OpenSource = func(string) (sheet.Source, error) { return nil, errors.New("corrupt zip") }

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	err := f.waitIdle()

	var fatal *FatalRunError
	require.ErrorAs(t, err, &fatal)
	assert.Contains(t, err.Error(), "corrupt zip")
	assert.Equal(t, Idle, f.ctl.State())
}

func TestUnavailableProviderIsFatal(t *testing.T) {
	f := newFixture(t, []any{6, 1})
	f.fake.Down = screen.ErrUnavailable

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	err := f.waitIdle()
	assert.ErrorIs(t, err, screen.ErrUnavailable)
	assert.Empty(t, f.fake.Ops())
}

func TestImagesResolveAgainstScriptDir(t *testing.T) {
	f := newFixture(t, []any{1, "btn.png"})
	f.fake.Show(f.image("btn.png"), screen.Position{X: 40, Y: 50})

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	require.NoError(t, f.waitIdle())

	clicks := f.fake.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, screen.Position{X: 40, Y: 50}, clicks[0].Pos)
	assert.Equal(t, f.dir, f.ctl.Config().BaseDir)
}

func TestMissingImageDoesNotStopRun(t *testing.T) {
	f := newFixture(t, []any{1, "nope.png"}, []any{6, 3})

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	require.NoError(t, f.waitIdle())

	assert.Equal(t, []string{"scroll"}, f.fake.Ops())
	assert.Equal(t, 1, f.rec.count("skipped row 2"))
}

func TestConfigurationRejectedWhileRunning(t *testing.T) {
	f := newFixture(t, []any{5, 3600})
	require.NoError(t, f.ctl.Start(f.path, Once, 0))

	assert.True(t, utils.IsConfigError(f.ctl.SetInterval(1)))
	assert.True(t, utils.IsConfigError(f.ctl.SetStopHotkey("f9")))

	f.ctl.Stop()
	require.NoError(t, f.waitIdle())

	require.NoError(t, f.ctl.SetInterval(0.5))
	require.NoError(t, f.ctl.SetStopHotkey("F9"))
	cfg := f.ctl.Config()
	assert.Equal(t, 0.5, cfg.Interval)
	assert.Equal(t, "f9", cfg.StopHotkey)
}

func TestSetters(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.ctl.SetInterval(0))
	assert.True(t, utils.IsConfigError(f.ctl.SetInterval(-0.1)))

	assert.NoError(t, f.ctl.SetStopHotkey("ctrl+shift+q"))
	for _, bad := range []string{"ctrl+", "foo+q", ""} {
		err := f.ctl.SetStopHotkey(bad)
		assert.True(t, utils.IsConfigError(err), bad)
	}
}

func TestHotkeyRegistrationFailureStillRuns(t *testing.T) {
	f := newFixture(t, []any{6, 1})
	f.keys.RegisterErr = errors.New("no accessibility permission")

	require.NoError(t, f.ctl.Start(f.path, Once, 0))
	require.NoError(t, f.waitIdle())
	assert.Equal(t, []string{"scroll"}, f.fake.Ops())
	assert.Equal(t, 1, f.rec.count("Stop hotkey unavailable"))
}

func TestGetCurrentCursorPosition(t *testing.T) {
	f := newFixture(t)
	f.fake.Cursor = screen.Position{X: 640, Y: 480}

	pos, err := f.ctl.GetCurrentCursorPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, screen.Position{X: 640, Y: 480}, pos)

	f.ctl.opts.CursorDelay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.ctl.GetCurrentCursorPosition(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("LOOP")
	require.NoError(t, err)
	assert.Equal(t, Loop, m)

	m, err = ParseMode("once")
	require.NoError(t, err)
	assert.Equal(t, Once, m)

	_, err = ParseMode("twice")
	assert.True(t, utils.IsConfigError(err))
}

func TestParseLoopCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{" 12 ", 12, true},
		{"-1", 0, false},
		{"three", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		n, err := ParseLoopCount(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, n)
		} else {
			assert.True(t, utils.IsConfigError(err), tt.in)
		}
	}
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, screen.ErrUnavailable)

	_, err = New(Options{Provider: screentest.NewFake(), StopHotkey: "foo+q"})
	assert.True(t, utils.IsConfigError(err))
}
