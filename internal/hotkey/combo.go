// Package hotkey parses global hotkey combinations and defines how they are registered.
//
// Grammar: an optional run of modifiers from {ctrl, shift, alt, win} followed by
// one key from {f1..f12, a-z, 0-9}, joined with "+". Case and spaces are ignored.
package hotkey

import (
	"fmt"
	"strings"

	"github.com/jeeftor/rpa-runner/internal/utils"
)

var modifierOrder = []string{"ctrl", "shift", "alt", "win"}

var validModifiers = map[string]bool{
	"ctrl":  true,
	"shift": true,
	"alt":   true,
	"win":   true,
}

// Combo is a parsed hotkey. Modifiers are deduplicated and in canonical order.
type Combo struct {
	Modifiers []string
	Key       string
}

// Parse validates combo against the hotkey grammar
func Parse(combo string) (Combo, error) {
	raw := strings.ToLower(strings.ReplaceAll(combo, " ", ""))
	if raw == "" {
		return Combo{}, utils.NewConfigError("hotkey", combo, "required", "hotkey is empty")
	}

	parts := strings.Split(raw, "+")
	key := parts[len(parts)-1]
	if !validKey(key) {
		if key == "" {
			return Combo{}, utils.NewConfigError("hotkey", combo, "key", "missing key after \"+\"")
		}
		return Combo{}, utils.NewConfigError("hotkey", combo, "key", fmt.Sprintf("unknown key %q", key))
	}

	seen := make(map[string]bool)
	for _, mod := range parts[:len(parts)-1] {
		if !validModifiers[mod] {
			return Combo{}, utils.NewConfigError("hotkey", combo, "modifier", fmt.Sprintf("unknown modifier %q", mod))
		}
		seen[mod] = true
	}

	c := Combo{Key: key}
	for _, mod := range modifierOrder {
		if seen[mod] {
			c.Modifiers = append(c.Modifiers, mod)
		}
	}
	return c, nil
}

// MustParse is Parse for compile-time constants
func MustParse(combo string) Combo {
	c, err := Parse(combo)
	if err != nil {
		panic(err)
	}
	return c
}

func validKey(key string) bool {
	if len(key) == 1 {
		ch := key[0]
		return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
	}
	if len(key) < 2 || len(key) > 3 || key[0] != 'f' {
		return false
	}
	switch key[1:] {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12":
		return true
	}
	return false
}

// String renders the canonical form, e.g. "ctrl+shift+q"
func (c Combo) String() string {
	if c.Key == "" {
		return ""
	}
	return strings.Join(append(append([]string{}, c.Modifiers...), c.Key), "+")
}

// IsZero reports whether c is the zero Combo
func (c Combo) IsZero() bool {
	return c.Key == ""
}

// Keys returns the key followed by its modifiers in the input library's naming,
// where the win modifier is "cmd".
func (c Combo) Keys() []string {
	keys := make([]string, 0, len(c.Modifiers)+1)
	keys = append(keys, c.Key)
	for _, mod := range c.Modifiers {
		if mod == "win" {
			mod = "cmd"
		}
		keys = append(keys, mod)
	}
	return keys
}

// Registrar binds combos to callbacks system-wide. Callbacks run on a
// goroutine owned by the registrar, never on the caller's.
type Registrar interface {
	Register(c Combo, callback func()) error
	Unregister(c Combo) error
}
