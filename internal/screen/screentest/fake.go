// Package screentest provides an in-memory screen.Automation for tests.
package screentest

import (
	"fmt"
	"sync"

	"github.com/jeeftor/rpa-runner/internal/screen"
)

// Call records one provider invocation
type Call struct {
	Op     string
	Arg    string
	Pos    screen.Position
	Button screen.Button
	Count  int
}

// Fake is a scriptable provider. Locate answers come from Matches: each call
// consumes the next entry for that image, and the last entry repeats.
type Fake struct {
	mu sync.Mutex

	Matches   map[string][]bool
	Positions map[string]screen.Position
	LocateErr map[string]error
	ClickErr  error
	PasteErr  error
	ScrollErr error
	Panic     string
	Cursor    screen.Position
	Down      error

	// Hooks run after the call is recorded, outside the lock
	OnLocate func(image string, n int)
	OnClick  func(n int)

	calls   []Call
	locates map[string]int
	clicks  int
}

// NewFake returns an empty fake where every image is missing
func NewFake() *Fake {
	return &Fake{
		Matches:   make(map[string][]bool),
		Positions: make(map[string]screen.Position),
		LocateErr: make(map[string]error),
		locates:   make(map[string]int),
	}
}

// Show makes image match at pos on every Locate
func (f *Fake) Show(image string, pos screen.Position) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Matches[image] = []bool{true}
	f.Positions[image] = pos
	return f
}

// Sequence scripts the successive Locate answers for image
func (f *Fake) Sequence(image string, pos screen.Position, answers ...bool) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Matches[image] = answers
	f.Positions[image] = pos
	return f
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

// Locate implements screen.Automation
func (f *Fake) Locate(image string, confidence float64) (screen.Position, bool, error) {
	f.mu.Lock()
	if f.Panic != "" {
		msg := f.Panic
		f.mu.Unlock()
		panic(msg)
	}
	n := f.locates[image]
	f.locates[image] = n + 1
	f.calls = append(f.calls, Call{Op: "locate", Arg: image})
	err := f.LocateErr[image]
	answers := f.Matches[image]
	pos := f.Positions[image]
	hook := f.OnLocate
	f.mu.Unlock()

	if hook != nil {
		hook(image, n+1)
	}
	if err != nil {
		return screen.Position{}, false, err
	}
	if len(answers) == 0 {
		return screen.Position{}, false, nil
	}
	idx := n
	if idx >= len(answers) {
		idx = len(answers) - 1
	}
	if !answers[idx] {
		return screen.Position{}, false, nil
	}
	return pos, true, nil
}

// Click implements screen.Automation
func (f *Fake) Click(pos screen.Position, button screen.Button, count int) error {
	f.mu.Lock()
	f.clicks++
	n := f.clicks
	f.calls = append(f.calls, Call{Op: "click", Pos: pos, Button: button, Count: count})
	err := f.ClickErr
	hook := f.OnClick
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return err
}

// Paste implements screen.Automation
func (f *Fake) Paste(text string) error {
	f.record(Call{Op: "paste", Arg: text})
	return f.PasteErr
}

// Scroll implements screen.Automation
func (f *Fake) Scroll(delta int) error {
	f.record(Call{Op: "scroll", Arg: fmt.Sprint(delta), Count: delta})
	return f.ScrollErr
}

// CursorPosition implements screen.Automation
func (f *Fake) CursorPosition() (screen.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "cursor"})
	return f.Cursor, nil
}

// Available implements screen.Checker
func (f *Fake) Available() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Down
}

// Calls returns a copy of every recorded call
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Ops returns the op names of every recorded call, in order
func (f *Fake) Ops() []string {
	calls := f.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Clicks returns only the click calls
func (f *Fake) Clicks() []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == "click" {
			out = append(out, c)
		}
	}
	return out
}

// LocateCount returns how many times image was searched for
func (f *Fake) LocateCount(image string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locates[image]
}

var (
	_ screen.Automation = (*Fake)(nil)
	_ screen.Checker    = (*Fake)(nil)
)
