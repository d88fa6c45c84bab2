package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// These variables will be set during the build using ldflags
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildTime    = "unknown"
)

var shortOutput bool

// GetFormattedBuildTime returns the build time in a readable format
func GetFormattedBuildTime() string {
	if buildTime == "unknown" {
		return buildTime
	}
	if t, err := time.Parse(time.RFC3339, buildTime); err == nil {
		return t.Format("2006-01-02 15:04:05 MST")
	}
	if unix, err := strconv.ParseInt(buildTime, 10, 64); err == nil {
		return time.Unix(unix, 0).Format("2006-01-02 15:04:05 MST")
	}
	return buildTime
}

// GetDisplayVersion returns the ldflags version, or the module version for
// "go install" builds, or "dev"
func GetDisplayVersion() string {
	if buildVersion != "dev" {
		return buildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return fmt.Sprintf("dev (%s)", s.Value[:7])
			}
		}
	}
	return "dev"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if shortOutput {
			// For short output, just show the raw buildVersion for scripts
			fmt.Println(buildVersion)
			return
		}

		label := color.New(color.FgWhite)
		rows := []struct {
			name  string
			value string
			attr  color.Attribute
		}{
			{"Version: ", GetDisplayVersion(), color.FgCyan},
			{"Built:   ", GetFormattedBuildTime(), color.FgYellow},
			{"Commit:  ", buildCommit, color.FgGreen},
			{"OS/Arch: ", runtime.GOOS + "/" + runtime.GOARCH, color.FgMagenta},
			{"Go:      ", runtime.Version(), color.FgRed},
			{"Binary:  ", executablePath(), color.FgBlue},
		}
		for _, row := range rows {
			label.Print(row.name)
			color.New(row.attr).Println(row.value)
		}
	},
}

func executablePath() string {
	exe, err := os.Executable()
	if err != nil {
		return "Unknown"
	}
	if abs, err := filepath.Abs(exe); err == nil {
		return abs
	}
	return exe
}

func init() {
	versionCmd.Flags().BoolVarP(&shortOutput, "short", "n", false, "Print only version number")
	rootCmd.AddCommand(versionCmd)
}
