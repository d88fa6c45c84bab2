package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeeftor/rpa-runner/internal/hotkey"
	"github.com/jeeftor/rpa-runner/internal/hotkey/hook"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/styles"
)

var hotkeyCmd = &cobra.Command{
	Use:   "hotkey",
	Short: "Check or try out a stop hotkey",
	Long: `Hotkeys are written as modifiers and one key joined by "+", for example
ctrl+shift+q. Modifiers: ctrl, shift, alt, win. Keys: a-z, 0-9, f1-f12.`,
}

var hotkeyCheckCmd = &cobra.Command{
	Use:   "check <combo>",
	Short: "Parse a hotkey and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		combo, err := hotkey.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Canonical:"), styles.ValueStyle.Render(combo.String()))
		fmt.Printf("%s %s\n", styles.LabelStyle.Render("Keys:     "), styles.ValueStyle.Render(strings.Join(combo.Keys(), " ")))
		return nil
	},
}

var hotkeyListenCmd = &cobra.Command{
	Use:   "listen <combo>",
	Short: "Register a hotkey and report each press until Ctrl+C",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		combo, err := hotkey.Parse(args[0])
		if err != nil {
			return err
		}

		pressed := make(chan struct{}, 1)
		registrar := hook.NewRegistrar()
		if err := registrar.Register(combo, func() {
			select {
			case pressed <- struct{}{}:
			default:
			}
		}); err != nil {
			return err
		}
		defer func() {
			if err := registrar.Unregister(combo); err != nil {
				logging.Debug("Unregister failed", "combo", combo.String(), "error", err)
			}
		}()

		ctx := context.Background()
		if contextManager != nil {
			ctx = contextManager.GetContext()
		}

		logging.UserInfof("Listening for %s, press Ctrl+C to end", combo)
		for count := 1; ; count++ {
			select {
			case <-ctx.Done():
				return nil
			case <-pressed:
				logging.Successf("%s pressed (%d)", combo, count)
			}
		}
	},
}

func init() {
	hotkeyCmd.AddCommand(hotkeyCheckCmd)
	hotkeyCmd.AddCommand(hotkeyListenCmd)
	rootCmd.AddCommand(hotkeyCmd)
}
