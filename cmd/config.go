package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/filesystem"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/params"
	"github.com/jeeftor/rpa-runner/internal/styles"
	"github.com/jeeftor/rpa-runner/internal/utils"
	"github.com/jeeftor/rpa-runner/internal/validation"
)

var (
	configForce bool
	configYAML  bool
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage RPA Runner configuration files and settings",
	Long: `Manage the configuration file and inspect effective settings.

Configuration files are searched in this order:
1. ./.rpa.yaml (project config)
2. ~/.rpa.yaml (user config)
3. /etc/rpa/.rpa.yaml (system config)

Environment variables (RPA_*) override config file values.
Command-line flags override both config files and environment variables.`,
}

// configInitCmd creates a sample configuration file
var configInitCmd = &cobra.Command{
	Use:   "init [config-file]",
	Short: "Create a sample configuration file",
	Long: `Generate a configuration file with every option and its default.

If no file is specified, creates ~/.rpa.yaml in the user's home directory.

Examples:
  rpa config init              # Create ~/.rpa.yaml
  rpa config init .rpa.yaml    # Create a project config`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var configPath string
		if len(args) > 0 {
			configPath = args[0]
		} else {
			home, err := defaultConfigPath()
			if err != nil {
				return utils.NewFileError("locate", "home directory", err)
			}
			configPath = home
		}

		absPath, err := filesystem.GetAbsolutePath(configPath)
		if err != nil {
			return utils.NewFileError("resolve", configPath, err)
		}
		if err := filesystem.ValidateOutputFile(absPath, "config file", configForce); err != nil {
			return utils.NewFileError("write", absPath, err)
		}

		data, err := sampleConfig()
		if err != nil {
			return err
		}
		if err := os.WriteFile(absPath, data, 0644); err != nil {
			return utils.NewFileError("write", absPath, err)
		}

		logging.Successf("Created configuration file: %s", absPath)
		logging.UserInfof("Edit the file to customize your settings")
		return nil
	},
}

// configShowCmd displays current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display effective configuration values and their sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, sources, err := effectiveConfig()
		if err != nil {
			return err
		}

		if configYAML {
			out, err := yaml.Marshal(opts)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}

		fmt.Printf("%s\n", styles.HeaderStyle.Render("Current Configuration"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("Active config file: %s\n", styles.SuccessStyle.Render(used))
		} else {
			fmt.Printf("Active config file: %s\n", styles.MutedStyle.Render("none"))
		}

		for _, row := range []struct{ key, value string }{
			{params.KeyScript, opts.Script},
			{params.KeyInterval, strconv.FormatFloat(opts.Interval, 'g', -1, 64)},
			{params.KeyStopHotkey, opts.StopHotkey},
			{params.KeyMode, opts.Mode},
			{params.KeyLoopCount, strconv.Itoa(opts.LoopCount)},
			{params.KeyLogLevel, opts.LogLevel},
		} {
			value := row.value
			if value == "" {
				value = "-"
			}
			fmt.Printf("  %s: %s %s\n",
				styles.KeyStyle.Render(row.key),
				styles.ValueStyle.Render(value),
				styles.MutedStyle.Render(fmt.Sprintf("(%s, %s)", sources[row.key], params.EnvName(row.key))))
		}

		result := validation.ValidateRunOptions(opts)
		for _, e := range result.Errors {
			if e.Field == params.KeyScript && opts.Script == "" {
				continue
			}
			fmt.Printf("%s %s\n", styles.WarningStyle.Render("!"), e.Error())
		}
		for _, w := range result.Warnings {
			fmt.Printf("%s %s\n", styles.WarningStyle.Render("!"), w)
		}
		return nil
	},
}

// configPathCmd shows configuration file search paths
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file search paths",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s\n", styles.HeaderStyle.Render("Configuration File Paths"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("Active: %s\n\n", styles.SuccessStyle.Render(used))
		}
		for i, dir := range configSearchPaths() {
			path := filepath.Join(dir, ".rpa.yaml")
			status := styles.MutedStyle.Render("missing")
			if filesystem.FileExists(path) {
				status = styles.SuccessStyle.Render("found")
			}
			fmt.Printf("%d. %s %s\n", i+1, path, status)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configShowCmd.Flags().BoolVar(&configYAML, "yaml", false, "print the effective values as YAML")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// effectiveConfig resolves every key without flags, as a run would see it
func effectiveConfig() (validation.RunOptions, map[string]string, error) {
	resolver := params.NewParameterResolver()
	sources := make(map[string]string)

	var opts validation.RunOptions
	if script, err := resolver.ResolveScriptWithInfo(nil, -1); err == nil {
		opts.Script = script.Value
		sources[params.KeyScript] = script.Source
	} else {
		sources[params.KeyScript] = "none"
	}

	interval, info, err := resolver.ResolveIntervalWithInfo(0, false)
	if err != nil {
		return opts, sources, err
	}
	opts.Interval = interval
	sources[params.KeyInterval] = info.Source

	hotkeyInfo := resolver.ResolveStopHotkeyWithInfo("", false)
	opts.StopHotkey = hotkeyInfo.Value
	sources[params.KeyStopHotkey] = hotkeyInfo.Source

	modeInfo := resolver.ResolveModeWithInfo("", false)
	opts.Mode = modeInfo.Value
	sources[params.KeyMode] = modeInfo.Source

	loopsInfo := resolver.ResolveLoopCountWithInfo("", false)
	loops, err := strconv.Atoi(loopsInfo.Value)
	if err != nil {
		return opts, sources, utils.NewConfigError(params.KeyLoopCount, loopsInfo.Value, "numeric", "must be a whole number")
	}
	opts.LoopCount = loops
	sources[params.KeyLoopCount] = loopsInfo.Source

	levelInfo := resolver.ResolveLogLevelWithInfo("")
	opts.LogLevel = levelInfo.Value
	sources[params.KeyLogLevel] = levelInfo.Source

	return opts, sources, nil
}

// sampleConfig renders the defaults as commented YAML
func sampleConfig() ([]byte, error) {
	defaults := validation.RunOptions{
		Script:     "",
		Interval:   constants.DefaultInterval.Seconds(),
		StopHotkey: constants.DefaultStopHotkey,
		Mode:       "once",
		LoopCount:  0,
		LogLevel:   "info",
	}

	var doc yaml.Node
	if err := doc.Encode(defaults); err != nil {
		return nil, err
	}
	doc.HeadComment = "RPA Runner configuration\n" +
		"Priority: flags > RPA_* environment variables > this file > defaults"

	comments := map[string]string{
		params.KeyScript:     "Script run when no argument is given (.xlsx, .xlsm, .xltx or .csv)",
		params.KeyInterval:   "Seconds between image search attempts",
		params.KeyStopHotkey: "Global hotkey that stops a run: modifiers (ctrl, shift, alt, win) + one key",
		params.KeyMode:       "once or loop",
		params.KeyLoopCount:  "Passes in loop mode, 0 loops until stopped",
		params.KeyLogLevel:   "trace, debug, info, warn or error",
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if c, ok := comments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
