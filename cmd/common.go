package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/export"
	"github.com/KaramelBytes/insightforge-cli/internal/report"
	"github.com/KaramelBytes/insightforge-cli/internal/utils"
	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

// filterFlags are the row filter and chart flags shared by analyze, export
// and resume.
type filterFlags struct {
	dateColumn     string
	from, to       string
	categoryColumn string
	categories     []string
	aggregation    string
	bins           int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.dateColumn, "date-column", "", "column used for the date range filter")
	fl.StringVar(&f.from, "from", "", "inclusive start date (yyyy-mm-dd)")
	fl.StringVar(&f.to, "to", "", "inclusive end date (yyyy-mm-dd)")
	fl.StringVar(&f.categoryColumn, "category-column", "", "column used for the category filter")
	fl.StringSliceVar(&f.categories, "categories", nil, "comma-separated categories to keep")
	fl.StringVar(&f.aggregation, "aggregation", "", "daily trend aggregation: mean|sum|count (default from config)")
	fl.IntVar(&f.bins, "bins", 0, "histogram bins (default from config)")
}

func (f *filterFlags) state() (analysis.FiltersState, error) {
	st := analysis.FiltersState{
		DateColumn:         f.dateColumn,
		DateFrom:           f.from,
		DateTo:             f.to,
		CategoryColumn:     f.categoryColumn,
		SelectedCategories: f.categories,
	}
	if (st.DateFrom != "" || st.DateTo != "") && st.DateColumn == "" {
		return st, fmt.Errorf("--from/--to require --date-column")
	}
	if len(st.SelectedCategories) > 0 && st.CategoryColumn == "" {
		return st, fmt.Errorf("--categories requires --category-column")
	}
	return st, st.Validate()
}

// chart overlays the flag values on base.
func (f *filterFlags) chart(base analysis.ChartOptions) (analysis.ChartOptions, error) {
	if f.aggregation != "" {
		agg, err := analysis.ParseAggregation(f.aggregation)
		if err != nil {
			return base, err
		}
		base.Aggregation = agg
	}
	if f.bins < 0 {
		return base, fmt.Errorf("--bins must be positive")
	}
	if f.bins > 0 {
		base.Bins = f.bins
	}
	return base, nil
}

// sheetFlags select one sheet of a workbook by name or 1-based index.
type sheetFlags struct {
	name  string
	index int
}

func (s *sheetFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.name, "sheet", "", "sheet name to analyze")
	cmd.Flags().IntVar(&s.index, "sheet-index", 1, "1-based sheet index (used if --sheet not provided)")
}

func (s *sheetFlags) pick(wb *workbook.Workbook) (workbook.Sheet, error) {
	if s.name != "" {
		return wb.Sheet(s.name)
	}
	return wb.SheetAt(s.index)
}

// openWorkbook validates and parses path under the configured size limit.
func openWorkbook(path string) (*workbook.Workbook, error) {
	if err := workbook.Validate(path, settings().MaxBytes()); err != nil {
		return nil, err
	}
	wb, err := workbook.Read(path)
	if err != nil {
		return nil, err
	}
	appLogger().Debug("read workbook",
		zap.String("file", wb.Metadata.FileName),
		zap.Int("sheets", len(wb.Sheets)),
		zap.Int("rows", wb.Metadata.TotalRows))
	return wb, nil
}

// renderSnapshot renders a snapshot as md, json or yaml.
func renderSnapshot(name string, meta workbook.Metadata, snap *dashboard.Snapshot, format string, sampleRows int) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		opts := []report.Option{report.WithCorrelations(snap.Correlation), report.WithChartSuggestions(snap.Charts)}
		if snap.Trend != nil {
			opts = append(opts, report.WithTrend(*snap.Trend))
		}
		if sampleRows > 0 {
			opts = append(opts, report.WithSampleRows(snap.Filtered, sampleRows))
		}
		return []byte(report.Markdown(name, snap.Profile, snap.Insights, opts...)), nil
	case "json", "yaml", "yml":
		return utils.Marshal(struct {
			Metadata workbook.Metadata   `json:"metadata" yaml:"metadata"`
			Snapshot *dashboard.Snapshot `json:"snapshot" yaml:"snapshot"`
		}{meta, snap}, format)
	}
	return nil, fmt.Errorf("unsupported --format: %s (use md|json|yaml)", format)
}

// emit writes data to path, or to out when path is empty.
func emit(out io.Writer, path string, data []byte, what string) error {
	if path == "" {
		_, err := out.Write(data)
		if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = io.WriteString(out, "\n")
		}
		return err
	}
	if err := export.WriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(out, "✓ Wrote %s to %s\n", what, path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
