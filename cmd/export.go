package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/export"
	"github.com/KaramelBytes/insightforge-cli/internal/report"
)

var (
	expSheet      sheetFlags
	expFilters    filterFlags
	expFormat     string
	expOutputPath string
	expAllSheets  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export filtered rows (csv, xlsx) or the analysis report (md, html)",
	Long: `Export the filtered rows of a sheet as CSV or Excel, or the analysis
report as Markdown or a standalone HTML page.

With --all-sheets and --format xlsx every sheet is filtered and written to its
own worksheet; filter parts naming a column a sheet lacks are skipped for
that sheet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(expFormat)
		switch format {
		case "csv", "xlsx", "md", "markdown", "html":
		default:
			return fmt.Errorf("unsupported --format: %s (use csv|xlsx|md|html)", expFormat)
		}
		outPath := expOutputPath
		if format == "xlsx" && outPath == "" {
			outPath = defaultExportName(args[0], "xlsx")
		}
		if expAllSheets && format != "xlsx" {
			return fmt.Errorf("--all-sheets is only supported with --format xlsx")
		}
		filters, err := expFilters.state()
		if err != nil {
			return err
		}
		chart, err := expFilters.chart(settings().ChartOptions())
		if err != nil {
			return err
		}

		wb, err := openWorkbook(args[0])
		if err != nil {
			return err
		}
		svc := dashboard.New(appLogger(), chart)

		if expAllSheets {
			snaps, err := svc.BuildWorkbook(cmd.Context(), wb, filters)
			if err != nil {
				return err
			}
			sheets := make([]export.Sheet, len(snaps))
			for i, s := range snaps {
				sheets[i] = export.Sheet{Name: s.Sheet, Rows: s.Filtered}
			}
			if err := export.WriteXLSX(outPath, sheets); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d sheets to %s\n", len(sheets), outPath)
			return nil
		}

		sheet, err := expSheet.pick(wb)
		if err != nil {
			return err
		}
		snap, err := svc.Build(cmd.Context(), sheet, filters)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch format {
		case "csv":
			var buf bytes.Buffer
			if err := export.RowsCSV(&buf, snap.Filtered); err != nil {
				return err
			}
			return emit(out, outPath, buf.Bytes(), fmt.Sprintf("%d rows", len(snap.Filtered)))
		case "xlsx":
			if err := export.WriteXLSX(outPath, []export.Sheet{{Name: sheet.Name, Rows: snap.Filtered}}); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Exported %d rows to %s\n", len(snap.Filtered), outPath)
			return nil
		}

		md, err := renderSnapshot(wb.Metadata.FileName, wb.Metadata, snap, "md", settings().SampleRows)
		if err != nil {
			return err
		}
		if format == "html" {
			page, err := report.HTML(string(md))
			if err != nil {
				return err
			}
			return emit(out, outPath, page, "report")
		}
		return emit(out, outPath, md, "report")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	expSheet.bind(exportCmd)
	expFilters.bind(exportCmd)
	exportCmd.Flags().StringVar(&expFormat, "format", "csv", "export format: csv|xlsx|md|html")
	exportCmd.Flags().StringVarP(&expOutputPath, "output", "o", "", "output path (stdout when empty; xlsx defaults to <file>-filtered.xlsx)")
	exportCmd.Flags().BoolVar(&expAllSheets, "all-sheets", false, "export every sheet (xlsx only)")
}

// defaultExportName suggests an output file next to the source.
func defaultExportName(src, ext string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(filepath.Dir(src), base+"-filtered."+ext)
}
