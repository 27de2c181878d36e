package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/apyexit/internal/normalize"
	"github.com/pdiddy/apyexit/internal/source"
	"github.com/pdiddy/apyexit/pkg/types"
)

// inspection is what inspect prints for one file.
type inspection struct {
	File    string                `json:"file" yaml:"file"`
	Variant string                `json:"variant" yaml:"variant"`
	Records []types.NormalizedRow `json:"records" yaml:"records"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the normalized rows of a spreadsheet",
	Long: `Inspect decodes a spreadsheet, detects its layout and prints the six
normalized fields of every row exactly as they would appear in the XML
file. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		tbl, err := source.LoadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		v, rows, err := normalize.Table(tbl)
		if err != nil {
			return err
		}

		return writeInspection(cmd.OutOrStdout(), format, inspection{
			File:    filepath.Base(args[0]),
			Variant: v.Name,
			Records: rows,
		})
	},
}

func writeInspection(w io.Writer, format string, in inspection) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		fmt.Fprintf(w, "%s: variant %s, %d records\n\n", in.File, in.Variant, len(in.Records))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "LINE\tPRAN\tEXIT DATE\tACCOUNT\tBRANCH CODE\tADDRESS\tPIN")
		for _, r := range in.Records {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Line, r.PRAN, r.ExitDate, r.Account, r.BranchCode, r.Address, r.Pin)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q (want table, yaml or json)", format)
}

func init() {
	inspectCmd.Flags().StringP("format", "f", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(inspectCmd)
}
