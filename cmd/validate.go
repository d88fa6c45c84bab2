package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeeftor/rpa-runner/internal/filesystem"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/params"
	"github.com/jeeftor/rpa-runner/internal/pathres"
	"github.com/jeeftor/rpa-runner/internal/script"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/styles"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

var (
	validateFailFast bool
	validateList     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [script]",
	Short: "Check a script without running it",
	Long: `Parse every row of a script and report all invalid rows at once.

Nothing is clicked or typed. Use --fail-fast to stop at the first invalid
row, which is what "run" does, and --list to print every parsed row.

Examples:
  rpa validate jobs.xlsx
  rpa validate jobs.csv --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := params.NewParameterResolver().ResolveScript(args, 0)
		if err != nil {
			return err
		}
		if err := filesystem.ValidateInputFile(path, "script", params.EnvName(params.KeyScript)); err != nil {
			return utils.NewFileError("read", path, err)
		}

		logging.LoadFile(path)
		src, err := sheet.Open(path)
		if err != nil {
			return utils.NewFileError("open", path, err)
		}

		validate := script.ValidateAll
		if validateFailFast {
			validate = script.Validate
		}
		rows, err := validate(src)
		if err != nil {
			reportValidation(err)
			return err
		}

		checkImages(path, rows)
		if validateList {
			for _, row := range rows {
				fmt.Printf("  %s\n", row)
			}
		}
		fmt.Println(summarizeRows(rows))
		logging.Successf("%s is valid (%d rows)", path, len(rows))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateFailFast, "fail-fast", false, "stop at the first invalid row")
	validateCmd.Flags().BoolVarP(&validateList, "list", "l", false, "print every parsed row")
	rootCmd.AddCommand(validateCmd)
}

// reportValidation prints one line per invalid row
func reportValidation(err error) {
	var multi *utils.MultiError
	if errors.As(err, &multi) {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render(fmt.Sprintf("%d invalid rows:", len(multi.Errors))))
		for _, e := range multi.Errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return
	}
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render(err.Error()))
}

// summarizeRows counts rows per kind in kind order
func summarizeRows(rows []script.Row) string {
	counts := make(map[script.Kind]int)
	for _, row := range rows {
		counts[row.Kind]++
	}
	var parts []string
	for k := script.Click; k <= script.CoordinateClick; k++ {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", styles.KeyStyle.Render(k.String()), n))
		}
	}
	return strings.Join(parts, " ")
}

// checkImages warns about image rows whose file cannot be found or decoded
func checkImages(scriptPath string, rows []script.Row) {
	wd, _ := os.Getwd()
	resolver := pathres.Resolver{
		ScriptDir:  filepath.Dir(scriptPath),
		ProgramDir: filesystem.ExecutableDir(),
		WorkDir:    wd,
	}
	for _, row := range rows {
		click, ok := row.Action.(script.ImageClick)
		if !ok {
			continue
		}
		if !filesystem.IsImageFile(click.Image) {
			logging.UserWarnf("Warning: row %d: %q is not a supported image type", row.Number, click.Image)
		}
		if !filesystem.FileExists(resolver.Resolve(click.Image)) {
			logging.UserWarnf("Warning: row %d: %q not found (tried %s)", row.Number, click.Image,
				strings.Join(resolver.Candidates(click.Image), ", "))
		}
	}
}
