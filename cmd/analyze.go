package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/session"
)

var (
	anaSheet      sheetFlags
	anaFilters    filterFlags
	anaFormat     string
	anaOutputPath string
	anaSave       string
	anaSampleRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a workbook sheet and derive insights",
	Long: `Profile one sheet of an .xlsx, .xlsm, .csv or .tsv file: column types,
missing values, distribution statistics, correlations, outliers, category
imbalance and seasonality, followed by preprocessing recommendations.

Filters narrow the trend and charts; the profile always covers every row.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		filters, err := anaFilters.state()
		if err != nil {
			return err
		}
		chart, err := anaFilters.chart(settings().ChartOptions())
		if err != nil {
			return err
		}

		wb, err := openWorkbook(path)
		if err != nil {
			return err
		}
		sheet, err := anaSheet.pick(wb)
		if err != nil {
			return err
		}

		snap, err := dashboard.New(appLogger(), chart).Build(cmd.Context(), sheet, filters)
		if err != nil {
			return err
		}

		sampleRows := settings().SampleRows
		if cmd.Flags().Changed("sample-rows") {
			sampleRows = anaSampleRows
		}
		data, err := renderSnapshot(wb.Metadata.FileName, wb.Metadata, snap, anaFormat, sampleRows)
		if err != nil {
			return err
		}
		if err := emit(cmd.OutOrStdout(), anaOutputPath, data, "analysis"); err != nil {
			return err
		}

		if cmd.Flags().Changed("save") {
			name := strings.TrimSpace(anaSave)
			if name == "" {
				name = strings.TrimSuffix(wb.Metadata.FileName, filepath.Ext(wb.Metadata.FileName))
			}
			sess := session.New(name, path, sheet.Name, sheet.Rows)
			sess.Filters = filters
			sess.Chart = snap.Chart
			if err := session.NewStore(settings().StateDir).Save(sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved session %s (%s)\n", sess.ID, sess.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaSheet.bind(analyzeCmd)
	anaFilters.bind(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "md", "output format: md|json|yaml")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&anaSave, "save", "", "save the loaded rows and selection as a session (--save=<name>; defaults to the file name)")
	analyzeCmd.Flags().Lookup("save").NoOptDefVal = " "
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "rows to include in the sample table (default from config, 0 disables)")
}
