package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jeeftor/rpa-runner/internal/filesystem"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

var sampleForce bool

var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Write an example script workbook",
	Long: `Write an .xlsx workbook showing every action kind, with a note column
explaining each row. Defaults to sample.xlsx in the current directory.

Examples:
  rpa sample
  rpa sample jobs/template.xlsx --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "sample.xlsx"
		if len(args) > 0 {
			path = args[0]
		}
		if filesystem.GetFileExtension(path) != "xlsx" {
			return utils.NewConfigError("sample file", path, "extension", "must end in .xlsx")
		}
		if err := filesystem.ValidateOutputFile(path, "sample file", sampleForce); err != nil {
			return utils.NewFileError("write", path, err)
		}
		if err := sheet.WriteSample(path); err != nil {
			return utils.NewFileError("write", path, err)
		}
		logging.SaveFile(path, "sample script")
		logging.UserInfof("Run it with: rpa run %s", path)
		return nil
	},
}

func init() {
	sampleCmd.Flags().BoolVarP(&sampleForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(sampleCmd)
}
