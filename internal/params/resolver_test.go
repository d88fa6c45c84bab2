package params

import (
	"testing"

	"github.com/spf13/viper"
)

func TestResolveScriptWithInfo(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		position       int
		envValue       string
		viperValue     string
		expectedValue  string
		expectedSource string
		expectError    bool
	}{
		{
			name:           "Script from argument",
			args:           []string{"jobs.xlsx"},
			position:       0,
			expectedValue:  "jobs.xlsx",
			expectedSource: "argument",
		},
		{
			name:           "Script from environment when no argument",
			args:           []string{},
			position:       0,
			envValue:       "env.xlsx",
			expectedValue:  "env.xlsx",
			expectedSource: "environment",
		},
		{
			name:           "Script from config when no argument or env",
			args:           []string{},
			position:       0,
			viperValue:     "config.csv",
			expectedValue:  "config.csv",
			expectedSource: "config",
		},
		{
			name:           "Argument takes precedence over environment",
			args:           []string{"arg.xlsx"},
			position:       0,
			envValue:       "env.xlsx",
			viperValue:     "config.csv",
			expectedValue:  "arg.xlsx",
			expectedSource: "argument",
		},
		{
			name:           "Environment takes precedence over config",
			args:           []string{},
			position:       0,
			envValue:       "env.xlsx",
			viperValue:     "config.csv",
			expectedValue:  "env.xlsx",
			expectedSource: "environment",
		},
		{
			name:        "Error when no script available",
			args:        []string{},
			position:    0,
			expectError: true,
		},
		{
			name:        "Error when position out of bounds",
			args:        []string{"a.xlsx"},
			position:    3,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvName(KeyScript), tt.envValue)

			v := viper.New()
			if tt.viperValue != "" {
				v.Set(KeyScript, tt.viperValue)
			}

			info, err := NewParameterResolverWith(v).ResolveScriptWithInfo(tt.args, tt.position)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if info.Value != tt.expectedValue {
				t.Errorf("Expected value '%s', got '%s'", tt.expectedValue, info.Value)
			}
			if info.Source != tt.expectedSource {
				t.Errorf("Expected source '%s', got '%s'", tt.expectedSource, info.Source)
			}
		})
	}
}

func TestResolveIntervalWithInfo(t *testing.T) {
	tests := []struct {
		name           string
		flagValue      float64
		flagSet        bool
		envValue       string
		viperValue     string
		expected       float64
		expectedSource string
		expectError    bool
	}{
		{
			name:           "Default when nothing set",
			expected:       0.01,
			expectedSource: "default",
		},
		{
			name:           "Flag wins",
			flagValue:      0.5,
			flagSet:        true,
			envValue:       "2",
			expected:       0.5,
			expectedSource: "flag",
		},
		{
			name:           "Environment",
			envValue:       "0.25",
			viperValue:     "3",
			expected:       0.25,
			expectedSource: "environment",
		},
		{
			name:           "Config",
			viperValue:     "1.5",
			expected:       1.5,
			expectedSource: "config",
		},
		{
			name:        "Non-numeric environment",
			envValue:    "fast",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvName(KeyInterval), tt.envValue)

			v := viper.New()
			if tt.viperValue != "" {
				v.Set(KeyInterval, tt.viperValue)
			}

			got, info, err := NewParameterResolverWith(v).ResolveIntervalWithInfo(tt.flagValue, tt.flagSet)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %g, got %g", tt.expected, got)
			}
			if info.Source != tt.expectedSource {
				t.Errorf("Expected source '%s', got '%s'", tt.expectedSource, info.Source)
			}
		})
	}
}

func TestResolveRunDefaults(t *testing.T) {
	t.Setenv(EnvName(KeyStopHotkey), "")
	t.Setenv(EnvName(KeyMode), "")
	t.Setenv(EnvName(KeyLoopCount), "")
	t.Setenv(EnvName(KeyLogLevel), "")

	r := NewParameterResolverWith(viper.New())

	if info := r.ResolveStopHotkeyWithInfo("", false); info.Value != "ctrl+shift+q" || info.Source != "default" {
		t.Errorf("Unexpected hotkey %+v", info)
	}
	if info := r.ResolveModeWithInfo("", false); info.Value != "once" || info.Source != "default" {
		t.Errorf("Unexpected mode %+v", info)
	}
	if info := r.ResolveLoopCountWithInfo("", false); info.Value != "0" {
		t.Errorf("Unexpected loop count %+v", info)
	}
	if level := r.ResolveLogLevel(""); level != "info" {
		t.Errorf("Expected info, got %s", level)
	}
}

func TestResolveRunOverrides(t *testing.T) {
	t.Setenv(EnvName(KeyMode), "loop")
	t.Setenv(EnvName(KeyLogLevel), "")

	v := viper.New()
	v.Set(KeyLoopCount, "4")
	v.Set(KeyLogLevel, "debug")
	r := NewParameterResolverWith(v)

	if info := r.ResolveModeWithInfo("", false); info.Value != "loop" || info.Source != "environment" {
		t.Errorf("Unexpected mode %+v", info)
	}
	if info := r.ResolveLoopCountWithInfo("", false); info.Value != "4" || info.Source != "config" {
		t.Errorf("Unexpected loop count %+v", info)
	}
	if info := r.ResolveStopHotkeyWithInfo("alt+f4", true); info.Value != "alt+f4" || info.Source != "flag" {
		t.Errorf("Unexpected hotkey %+v", info)
	}
	if level := r.ResolveLogLevel("warn"); level != "warn" {
		t.Errorf("Expected warn, got %s", level)
	}
	if level := r.ResolveLogLevel(""); level != "debug" {
		t.Errorf("Expected debug, got %s", level)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName(KeyStopHotkey); got != "RPA_STOP_HOTKEY" {
		t.Errorf("Expected RPA_STOP_HOTKEY, got %s", got)
	}
}
