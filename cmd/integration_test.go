package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

// resetFlags restores every flag under c to its default so Changed state and
// bound variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is execute that fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("INSIGHTFORGE_LOG_LEVEL", "error")
	return home
}

func TestCLI_SampleAnalyzeSaveResume(t *testing.T) {
	home := isolatedHome(t)
	book := filepath.Join(home, "demo.xlsx")

	out := runCmd(t, "sample", "--days", "60", "--seed", "3", "-o", book)
	if !strings.Contains(out, "✓ Wrote 60 sample rows") {
		t.Fatalf("unexpected sample output: %q", out)
	}

	out = runCmd(t, "sheets", book, "--format", "json")
	var meta workbook.Metadata
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		t.Fatalf("sheets json: %v\n%s", err, out)
	}
	if meta.TotalRows != 60 || len(meta.SheetNames) != 1 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	out = runCmd(t, "analyze", book, "--category-column", "Region", "--categories", "North,South", "--save=weekly")
	for _, want := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[INSIGHTS]", "[RECOMMENDATIONS]", "[CHART SUGGESTIONS]", "✓ Saved session"} {
		if !strings.Contains(out, want) {
			t.Fatalf("analyze output missing %q:\n%s", want, out)
		}
	}

	out = runCmd(t, "resume", "--list")
	if !strings.Contains(out, "weekly") || !strings.Contains(out, "60") {
		t.Fatalf("session not listed:\n%s", out)
	}

	out = runCmd(t, "resume", "weekly", "--format", "json")
	var doc struct {
		Snapshot struct {
			RowCount int `json:"row_count"`
			Filters  struct {
				CategoryColumn string `json:"category_column"`
			} `json:"filters"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("resume json: %v\n%s", err, out)
	}
	if doc.Snapshot.RowCount != 60 || doc.Snapshot.Filters.CategoryColumn != "Region" {
		t.Fatalf("resumed snapshot lost state: %+v", doc.Snapshot)
	}

	// Without an argument the latest session is used.
	out = runCmd(t, "resume")
	if !strings.Contains(out, "[DATASET SUMMARY]") {
		t.Fatalf("resume latest:\n%s", out)
	}

	runCmd(t, "resume", "weekly", "--delete")
	if _, err := execute(t, "resume", "weekly"); err == nil {
		t.Fatalf("expected error for deleted session")
	}
}

func TestCLI_ExportFormats(t *testing.T) {
	home := isolatedHome(t)
	book := filepath.Join(home, "demo.xlsx")
	runCmd(t, "sample", "--days", "40", "-o", book)

	csvPath := filepath.Join(home, "east.csv")
	runCmd(t, "export", book, "--format", "csv", "--category-column", "Region", "--categories", "East", "-o", csvPath)
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "Date,Region,") {
		t.Fatalf("unexpected csv:\n%s", b)
	}
	for _, l := range lines[1:] {
		if strings.Split(l, ",")[1] != "East" {
			t.Fatalf("row escaped the category filter: %q", l)
		}
	}

	htmlPath := filepath.Join(home, "report.html")
	runCmd(t, "export", book, "--format", "html", "-o", htmlPath)
	page, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(page), "DATASET SUMMARY</h2>") {
		t.Fatalf("html report missing sections")
	}

	runCmd(t, "export", book, "--format", "xlsx", "--all-sheets")
	wb, err := workbook.Read(filepath.Join(home, "demo-filtered.xlsx"))
	if err != nil {
		t.Fatalf("read exported workbook: %v", err)
	}
	if wb.Metadata.TotalRows != 40 {
		t.Fatalf("expected 40 exported rows, got %d", wb.Metadata.TotalRows)
	}

	if _, err := execute(t, "export", book, "--format", "pdf"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestCLI_AnalyzeRejectsBadInput(t *testing.T) {
	home := isolatedHome(t)
	book := filepath.Join(home, "demo.csv")
	runCmd(t, "sample", "--days", "10", "-o", book)

	cases := [][]string{
		{"analyze", book, "--date-column", "Date", "--from", "yesterday"},
		{"analyze", book, "--from", "2024-01-01"},
		{"analyze", book, "--aggregation", "median"},
		{"analyze", book, "--sheet", "Nope"},
		{"analyze", filepath.Join(home, "book.xls")},
	}
	for _, args := range cases {
		if _, err := execute(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}

	out := runCmd(t, "analyze", book, "--date-column", "Date", "--from", "2000-01-01", "--sample-rows", "0")
	if strings.Contains(out, "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("sample rows should be disabled:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolatedHome(t)

	runCmd(t, "config", "set", "default_bins", "12")
	if _, err := os.Stat(filepath.Join(home, ".insightforge", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "default_bins: 12") {
		t.Fatalf("config show missing update:\n%s", out)
	}
	if _, err := execute(t, "config", "set", "default_aggregation", "median"); err == nil {
		t.Fatalf("expected invalid aggregation error")
	}
	if _, err := execute(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
