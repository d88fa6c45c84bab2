package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

// EnvPrefix is prepended to every configuration key looked up in the environment
const EnvPrefix = "RPA"

// Configuration keys shared by the config file, the environment and the flags
const (
	KeyScript     = "script"
	KeyInterval   = "interval"
	KeyStopHotkey = "stop_hotkey"
	KeyMode       = "mode"
	KeyLoopCount  = "loop_count"
	KeyLogLevel   = "log_level"
)

// ParameterResolver handles resolution of run parameters from multiple sources.
// Priority: CLI args > flags > env vars > config > defaults
type ParameterResolver struct {
	v *viper.Viper
}

// NewParameterResolver creates a resolver over the global viper instance
func NewParameterResolver() *ParameterResolver {
	return &ParameterResolver{v: viper.GetViper()}
}

// NewParameterResolverWith creates a resolver over a specific viper instance
func NewParameterResolverWith(v *viper.Viper) *ParameterResolver {
	return &ParameterResolver{v: v}
}

// ParameterInfo provides information about where a parameter came from
type ParameterInfo struct {
	Value  string
	Source string // "argument", "flag", "environment", "config", "default", "none"
}

// EnvName returns the environment variable consulted for key
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// lookup returns the configured value of key and whether it came from the environment or a config file
func (r *ParameterResolver) lookup(key string) (string, string, bool) {
	if env, ok := os.LookupEnv(EnvName(key)); ok && env != "" {
		return env, "environment", true
	}
	if r.v.IsSet(key) {
		if value := r.v.GetString(key); value != "" {
			return value, "config", true
		}
	}
	return "", "", false
}

func (r *ParameterResolver) resolve(flagValue string, flagSet bool, key, fallback string) ParameterInfo {
	if flagSet {
		return ParameterInfo{Value: flagValue, Source: "flag"}
	}
	if value, source, ok := r.lookup(key); ok {
		return ParameterInfo{Value: value, Source: source}
	}
	if fallback == "" {
		return ParameterInfo{Source: "none"}
	}
	return ParameterInfo{Value: fallback, Source: "default"}
}

// ResolveScriptWithInfo resolves the script path.
// Priority: explicit argument > RPA_SCRIPT env var > config > error
func (r *ParameterResolver) ResolveScriptWithInfo(args []string, argIndex int) (ParameterInfo, error) {
	if argIndex >= 0 && argIndex < len(args) && args[argIndex] != "" {
		return ParameterInfo{Value: args[argIndex], Source: "argument"}, nil
	}
	if value, source, ok := r.lookup(KeyScript); ok {
		return ParameterInfo{Value: value, Source: source}, nil
	}
	return ParameterInfo{}, utils.NewConfigError("script", nil, "required",
		fmt.Sprintf("provide it as an argument or set %s", EnvName(KeyScript)))
}

// ResolveScript resolves the script path without source information
func (r *ParameterResolver) ResolveScript(args []string, argIndex int) (string, error) {
	info, err := r.ResolveScriptWithInfo(args, argIndex)
	return info.Value, err
}

// ResolveIntervalWithInfo resolves the retry interval in seconds.
// Priority: --interval flag > RPA_INTERVAL env var > config > default (0.01)
func (r *ParameterResolver) ResolveIntervalWithInfo(flagValue float64, flagSet bool) (float64, ParameterInfo, error) {
	info := r.resolve(strconv.FormatFloat(flagValue, 'g', -1, 64), flagSet, KeyInterval,
		strconv.FormatFloat(constants.DefaultInterval.Seconds(), 'g', -1, 64))
	seconds, err := strconv.ParseFloat(strings.TrimSpace(info.Value), 64)
	if err != nil {
		return 0, info, utils.NewConfigError("interval", info.Value, "numeric",
			fmt.Sprintf("must be a number of seconds (from %s)", info.Source))
	}
	return seconds, info, nil
}

// ResolveStopHotkeyWithInfo resolves the stop combo.
// Priority: --hotkey flag > RPA_STOP_HOTKEY env var > config > default (ctrl+shift+q)
func (r *ParameterResolver) ResolveStopHotkeyWithInfo(flagValue string, flagSet bool) ParameterInfo {
	return r.resolve(flagValue, flagSet, KeyStopHotkey, constants.DefaultStopHotkey)
}

// ResolveModeWithInfo resolves the run mode string.
// Priority: --mode flag > RPA_MODE env var > config > default ("once")
func (r *ParameterResolver) ResolveModeWithInfo(flagValue string, flagSet bool) ParameterInfo {
	return r.resolve(flagValue, flagSet, KeyMode, "once")
}

// ResolveLoopCountWithInfo resolves the loop count string. Empty means until stopped.
// Priority: --loops flag > RPA_LOOP_COUNT env var > config > default ("0")
func (r *ParameterResolver) ResolveLoopCountWithInfo(flagValue string, flagSet bool) ParameterInfo {
	return r.resolve(flagValue, flagSet, KeyLoopCount, "0")
}

// ResolveLogLevel resolves the log level.
// Priority: --log-level flag > RPA_LOG_LEVEL env var > config > default ("info")
func (r *ParameterResolver) ResolveLogLevel(flagValue string) string {
	return r.ResolveLogLevelWithInfo(flagValue).Value
}

// ResolveLogLevelWithInfo returns the log level and its source
func (r *ParameterResolver) ResolveLogLevelWithInfo(flagValue string) ParameterInfo {
	return r.resolve(flagValue, flagValue != "", KeyLogLevel, "info")
}
