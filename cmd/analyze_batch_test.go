package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_CollisionSuffixAndSampleRows(t *testing.T) {
	home := isolatedHome(t)

	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	for _, p := range []string{filepath.Join(d1, "metrics.csv"), filepath.Join(d2, "metrics.csv")} {
		if err := os.WriteFile(p, []byte(csv), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	outDir := filepath.Join(home, "summaries")
	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--sample-rows", "0")
	if !strings.Contains(out, "[1/2] Processing metrics.csv") || !strings.Contains(out, "[2/2]") {
		t.Fatalf("missing progress output:\n%s", out)
	}

	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing summary %s: %v", p, err)
		}
	}
	body, err := os.ReadFile(b1)
	if err != nil {
		t.Fatalf("read b1: %v", err)
	}
	if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("sample rows should be suppressed")
	}
	if !strings.Contains(string(body), "- col2: numeric") {
		t.Fatalf("schema line missing:\n%s", body)
	}
}

func TestAnalyzeBatch_AllSheetsAndQuiet(t *testing.T) {
	home := isolatedHome(t)
	book := filepath.Join(home, "book.xlsx")
	runCmd(t, "sample", "--days", "20", "-o", book)

	out := runCmd(t, "analyze-batch", book, "--all-sheets", "-q", "--out-dir", home)
	if out != "" {
		t.Fatalf("quiet run printed output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, "book.summary.md")); err != nil {
		t.Fatalf("missing summary: %v", err)
	}

	if _, err := execute(t, "analyze-batch", filepath.Join(home, "none-*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{"Q1 Sales": "q1-sales", "  ": "sheet", "data_2024!": "data-2024"}
	for in, want := range cases {
		if got := slug(in); got != want {
			t.Fatalf("slug(%q) = %q, want %q", in, got, want)
		}
	}
}
