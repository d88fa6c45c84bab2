package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/params"
	"github.com/jeeftor/rpa-runner/internal/resource"
)

var (
	cfgFile  string
	logLevel string

	// Global context and signal handling
	contextManager *resource.ContextManager
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rpa",
	Short: "RPA Runner replays spreadsheet scripts of desktop actions",
	Long: `RPA Runner reads a spreadsheet where each row is one desktop action
(click an image, paste text, wait, scroll, click a coordinate) and replays
the rows in order, once or in a loop, until a global stop hotkey is pressed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel = params.NewParameterResolver().ResolveLogLevel(logLevel)
		logging.InitWithLevel(logLevel)

		logging.Debug("Logging initialized", "level", logLevel)
		if used := viper.ConfigFileUsed(); used != "" {
			logging.Debug("Using config file", "path", used)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initResourceManagement)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rpa.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	viper.BindPFlag(params.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

// initResourceManagement initializes the global signal handling
func initResourceManagement() {
	if contextManager == nil {
		contextManager = resource.NewContextManager()
		logging.Debug("Signal handling initialized")
	}
}

// configSearchPaths lists the directories searched for .rpa.yaml, in order
func configSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return append(paths, "/etc/rpa")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// RPA_INTERVAL, RPA_STOP_HOTKEY, ...
	viper.SetEnvPrefix(params.EnvPrefix)
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		for _, path := range configSearchPaths() {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rpa")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// defaultConfigPath is where "config init" writes without an argument
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rpa.yaml"), nil
}
