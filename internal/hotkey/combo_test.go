package hotkey

import (
	"testing"

	"github.com/jeeftor/rpa-runner/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		keys  []string
	}{
		{"default stop", "ctrl+shift+q", "ctrl+shift+q", []string{"q", "ctrl", "shift"}},
		{"single letter", "q", "q", []string{"q"}},
		{"single digit", "7", "7", []string{"7"}},
		{"function key", "f12", "f12", []string{"f12"}},
		{"case and spaces", " Ctrl + ALT + F5 ", "ctrl+alt+f5", []string{"f5", "ctrl", "alt"}},
		{"canonical order", "shift+ctrl+x", "ctrl+shift+x", []string{"x", "ctrl", "shift"}},
		{"duplicate modifier", "ctrl+ctrl+x", "ctrl+x", []string{"x", "ctrl"}},
		{"win becomes cmd", "win+e", "win+e", []string{"e", "cmd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, tt.keys, c.Keys())
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "empty"},
		{"trailing plus", "ctrl+", "missing key"},
		{"unknown modifier", "foo+q", `unknown modifier "foo"`},
		{"unknown key", "ctrl+esc", `unknown key "esc"`},
		{"f13", "f13", `unknown key "f13"`},
		{"f0", "f0", `unknown key "f0"`},
		{"modifier alone", "ctrl", `unknown key "ctrl"`},
		{"key in modifier position", "q+ctrl", `unknown key "ctrl"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, utils.IsConfigError(err))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope+") })
	assert.NotPanics(t, func() { MustParse("ctrl+shift+q") })
}

func TestComboZero(t *testing.T) {
	assert.True(t, Combo{}.IsZero())
	assert.Equal(t, "", Combo{}.String())
}
