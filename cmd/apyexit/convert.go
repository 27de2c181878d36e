package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/apyexit/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert spreadsheets to exit-withdrawal XML files",
	Long: `Convert reads each spreadsheet (.xlsx, .xlsm, .xltx, .xltm or .csv), detects
its column layout, and writes one XML submission file per input into the
output directory. Files are processed in order; a failed file does not
stop the batch, but the command exits non-zero.

With --stdout a single file is converted and the document is written to
standard output instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, map[string]string{
			"output-dir": "output_dir",
			"escape":     "render.escape",
		}); err != nil {
			return err
		}
		cfg := conversionConfig()
		conv := convert.New(cfg.Render)

		toStdout, _ := cmd.Flags().GetBool("stdout")
		if toStdout {
			if len(args) != 1 {
				return fmt.Errorf("--stdout takes exactly one file, got %d", len(args))
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := conv.Document(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc.Content)
			return err
		}

		result := conv.ConvertBatch(cmd.Context(), args, cfg.OutputDir, cmd.OutOrStdout())
		if result.HasFailures() {
			return fmt.Errorf("%d of %d files failed", result.Failed, result.Total())
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("output-dir", "o", ".", "directory for generated XML files")
	convertCmd.Flags().Bool("escape", false, "XML-escape cell text (default: insert verbatim)")
	convertCmd.Flags().Bool("stdout", false, "write the document of a single file to standard output")

	rootCmd.AddCommand(convertCmd)
}
