package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/runner"
	"github.com/jeeftor/rpa-runner/internal/screen/robot"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

var (
	cursorDelay  time.Duration
	cursorNoCopy bool
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Capture the pointer position for a coordinate click row",
	Long: `Wait a few seconds so you can move the pointer over the target, then
print its position as "x;y" and copy it to the clipboard, ready to paste into
the value column of a kind 7 row.

Examples:
  rpa cursor
  rpa cursor --delay 2s --no-copy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cursorDelay <= 0 {
			// zero would select the controller's default delay
			cursorDelay = time.Millisecond
		}
		ctl, err := runner.New(runner.Options{
			Provider:    robot.New(),
			CursorDelay: cursorDelay,
		})
		if err != nil {
			return err
		}

		ctx := context.Background()
		if contextManager != nil {
			ctx = contextManager.GetContext()
		}

		logging.UserInfof("Move the pointer to the target, reading it in %s...", cursorDelay)
		pos, err := ctl.GetCurrentCursorPosition(ctx)
		if err != nil {
			return err
		}

		logging.UserInfof("%s", pos)
		if cursorNoCopy {
			return nil
		}
		if err := robot.CopyPosition(pos); err != nil {
			utils.WarnOnError(err, "could not copy to the clipboard")
			return nil
		}
		logging.Successf("Copied %s to the clipboard", pos)
		return nil
	},
}

func init() {
	cursorCmd.Flags().DurationVarP(&cursorDelay, "delay", "d", constants.CursorSampleDelay, "time to position the pointer")
	cursorCmd.Flags().BoolVar(&cursorNoCopy, "no-copy", false, "print only, leave the clipboard alone")
	rootCmd.AddCommand(cursorCmd)
}
