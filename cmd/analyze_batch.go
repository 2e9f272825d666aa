package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/export"
)

var (
	abSheet      sheetFlags
	abFilters    filterFlags
	abOutDir     string
	abAllSheets  bool
	abSampleRows int
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze several workbooks and write one summary per sheet",
	Long: `Analyze every file matched by the given paths or glob patterns. Summaries
are printed, or written to --out-dir as <file>[__sheet-<name>].summary.md.
An existing summary is never overwritten; a __2, __3 ... suffix is added.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if info, err := os.Stat(abOutDir); abOutDir != "" && err == nil && !info.IsDir() {
			return fmt.Errorf("--out-dir %s is not a directory", abOutDir)
		}
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		filters, err := abFilters.state()
		if err != nil {
			return err
		}
		chart, err := abFilters.chart(settings().ChartOptions())
		if err != nil {
			return err
		}
		sampleRows := settings().SampleRows
		if cmd.Flags().Changed("sample-rows") {
			sampleRows = abSampleRows
		}
		svc := dashboard.New(appLogger(), chart)
		out := cmd.OutOrStdout()

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			wb, err := openWorkbook(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			var snaps []*dashboard.Snapshot
			if abAllSheets {
				snaps, err = svc.BuildWorkbook(cmd.Context(), wb, filters)
			} else {
				sheet, perr := abSheet.pick(wb)
				if perr != nil {
					return fmt.Errorf("%s: %w", path, perr)
				}
				var snap *dashboard.Snapshot
				snap, err = svc.Build(cmd.Context(), sheet, filters)
				snaps = []*dashboard.Snapshot{snap}
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			for _, snap := range snaps {
				md, err := renderSnapshot(wb.Metadata.FileName, wb.Metadata, snap, "md", sampleRows)
				if err != nil {
					return err
				}
				if abOutDir == "" {
					if !abQuiet {
						fmt.Fprintln(out, string(md))
					}
					continue
				}
				base := strings.TrimSuffix(wb.Metadata.FileName, filepath.Ext(wb.Metadata.FileName))
				if len(wb.Sheets) > 1 {
					base += "__sheet-" + slug(snap.Sheet)
				}
				outFile := freeSummaryPath(abOutDir, base)
				if err := export.WriteFile(outFile, md); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !abQuiet {
					fmt.Fprintf(out, "✓ Wrote summary to %s\n", outFile)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abSheet.bind(analyzeBatchCmd)
	abFilters.bind(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write <file>.summary.md files into")
	analyzeBatchCmd.Flags().BoolVar(&abAllSheets, "all-sheets", false, "analyze every sheet of each workbook")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 0, "rows to include in the sample table (default from config, 0 disables)")
	analyzeBatchCmd.Flags().BoolVarP(&abQuiet, "quiet", "q", false, "suppress progress output")
}

// expandInputs resolves globs, keeps literal paths that exist, and returns a
// sorted list without duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 && fileExists(arg) {
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// freeSummaryPath returns dir/base.summary.md, or the first dir/base__N.summary.md
// that does not exist yet.
func freeSummaryPath(dir, base string) string {
	p := filepath.Join(dir, base+".summary.md")
	for idx := 2; fileExists(p); idx++ {
		p = filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", base, idx))
	}
	return p
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if out := strings.Trim(b.String(), "-"); out != "" {
		return out
	}
	return "sheet"
}
