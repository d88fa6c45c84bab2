// Package hotkeytest provides an in-memory hotkey.Registrar for tests.
package hotkeytest

import (
	"errors"
	"sync"

	"github.com/jeeftor/rpa-runner/internal/hotkey"
)

// Recorder keeps registrations in memory and lets tests fire them
type Recorder struct {
	mu        sync.Mutex
	callbacks map[string]func()
	history   []string

	RegisterErr error
}

// NewRecorder returns an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{callbacks: make(map[string]func())}
}

// Register implements hotkey.Registrar
func (r *Recorder) Register(c hotkey.Combo, callback func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.RegisterErr != nil {
		return r.RegisterErr
	}
	r.callbacks[c.String()] = callback
	r.history = append(r.history, "register "+c.String())
	return nil
}

// Unregister implements hotkey.Registrar
func (r *Recorder) Unregister(c hotkey.Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.callbacks[c.String()]; !ok {
		return errors.New("not registered: " + c.String())
	}
	delete(r.callbacks, c.String())
	r.history = append(r.history, "unregister "+c.String())
	return nil
}

// Fire runs the callback for combo on a new goroutine, like a real hook would.
// Returns false when nothing is registered for combo.
func (r *Recorder) Fire(combo string) bool {
	r.mu.Lock()
	cb, ok := r.callbacks[combo]
	r.mu.Unlock()
	if !ok {
		return false
	}
	go cb()
	return true
}

// Registered reports whether combo currently has a callback
func (r *Recorder) Registered(combo string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.callbacks[combo]
	return ok
}

// History returns every register/unregister in order
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

var _ hotkey.Registrar = (*Recorder)(nil)
