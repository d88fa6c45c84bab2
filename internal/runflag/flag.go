// Package runflag holds the single "keep running" signal shared by the
// foreground surface, the background run task and the hotkey callback.
package runflag

import (
	"sync"
	"sync/atomic"
	"time"
)

// Signal is the read side of the flag handed to policies and the dispatcher
type Signal interface {
	// IsSet reports whether the run should keep going
	IsSet() bool
	// Sleep waits for d and returns false if the flag was cleared before or during the wait
	Sleep(d time.Duration) bool
}

// Flag is safe for concurrent use. Clear wakes every pending Sleep.
type Flag struct {
	running atomic.Bool

	mu      sync.Mutex
	cleared chan struct{}
}

// New returns a cleared flag
func New() *Flag {
	f := &Flag{cleared: make(chan struct{})}
	close(f.cleared)
	return f
}

// Set raises the flag. Sleeps started after Set block until timeout or the next Clear.
func (f *Flag) Set() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running.Load() {
		return
	}
	f.cleared = make(chan struct{})
	f.running.Store(true)
}

// Clear lowers the flag. Returns true if it was set. Idempotent.
func (f *Flag) Clear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running.Load() {
		return false
	}
	f.running.Store(false)
	close(f.cleared)
	return true
}

// IsSet implements Signal
func (f *Flag) IsSet() bool {
	return f.running.Load()
}

// Done returns a channel closed once the flag is cleared
func (f *Flag) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

// Sleep implements Signal
func (f *Flag) Sleep(d time.Duration) bool {
	done := f.Done()
	if !f.IsSet() {
		return false
	}
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return f.IsSet()
	case <-done:
		return false
	}
}
