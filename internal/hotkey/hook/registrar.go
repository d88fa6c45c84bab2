// Package hook registers global hotkeys through github.com/robotn/gohook.
package hook

import (
	"fmt"
	"sync"

	"github.com/jeeftor/rpa-runner/internal/hotkey"
	"github.com/jeeftor/rpa-runner/internal/logging"
	gohook "github.com/robotn/gohook"
)

// Registrar owns the process-wide gohook event loop. The loop starts with the
// first registration and ends when the last combo is unregistered.
//
// gohook cannot drop a single registration, so every gohook callback looks its
// combo up in callbacks when it fires and does nothing once it was removed.
type Registrar struct {
	mu        sync.Mutex
	callbacks map[string]func()
	hooked    map[string]bool
	running   bool
}

// NewRegistrar returns an idle registrar
func NewRegistrar() *Registrar {
	return &Registrar{
		callbacks: make(map[string]func()),
		hooked:    make(map[string]bool),
	}
}

// Register implements hotkey.Registrar
func (r *Registrar) Register(c hotkey.Combo, callback func()) error {
	if c.IsZero() {
		return fmt.Errorf("register hotkey: empty combo")
	}
	name := c.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks[name] = callback
	if !r.hooked[name] || !r.running {
		gohook.Register(gohook.KeyDown, c.Keys(), func(gohook.Event) {
			r.fire(name)
		})
		r.hooked[name] = true
	}

	if !r.running {
		r.running = true
		events := gohook.Start()
		go func() {
			<-gohook.Process(events)
			logging.Debug("Hotkey event loop ended")
		}()
	}
	logging.Debug("Registered hotkey", "combo", name)
	return nil
}

// Unregister implements hotkey.Registrar
func (r *Registrar) Unregister(c hotkey.Combo) error {
	name := c.String()

	r.mu.Lock()
	if _, ok := r.callbacks[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("hotkey %s is not registered", name)
	}
	delete(r.callbacks, name)
	stop := len(r.callbacks) == 0 && r.running
	if stop {
		// End drops every gohook registration, so the next Register hooks again
		r.running = false
		r.hooked = make(map[string]bool)
	}
	r.mu.Unlock()

	logging.Debug("Unregistered hotkey", "combo", name)
	if stop {
		gohook.End()
	}
	return nil
}

func (r *Registrar) fire(name string) {
	r.mu.Lock()
	cb := r.callbacks[name]
	r.mu.Unlock()

	if cb == nil {
		return
	}
	logging.Debug("Hotkey pressed", "combo", name)
	go cb()
}

var _ hotkey.Registrar = (*Registrar)(nil)
