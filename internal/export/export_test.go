package export_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/export"
	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

func TestRowsCSVEscaping(t *testing.T) {
	cols := []string{"name", "note", "qty"}
	rows := []analysis.Row{
		analysis.NewRow(cols, []analysis.Value{analysis.String("Acme, Inc."), analysis.String(`say "hi"`), analysis.Number(3)}),
		analysis.NewRow(cols, []analysis.Value{analysis.String("Plain"), analysis.String("two\nlines"), analysis.Null()}),
	}
	var buf bytes.Buffer
	require.NoError(t, export.RowsCSV(&buf, rows))
	want := "name,note,qty\n" +
		`"Acme, Inc.","say ""hi""",3` + "\n" +
		"Plain,\"two\nlines\",\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, export.RowsCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"Date", "Region", "Units", "Promo"}
	rows := []analysis.Row{
		analysis.NewRow(cols, []analysis.Value{analysis.Time(day), analysis.String("North"), analysis.Number(4), analysis.Bool(true)}),
		analysis.NewRow(cols, []analysis.Value{analysis.Time(day.AddDate(0, 0, 1)), analysis.String("South"), analysis.Null(), analysis.Bool(false)}),
	}
	long := strings.Repeat("x", 40)
	p := filepath.Join(t.TempDir(), "out", "export.xlsx")
	require.NoError(t, export.WriteXLSX(p, []export.Sheet{
		{Name: long, Rows: rows},
		{Name: long, Rows: rows[:1]},
		{Name: "", Rows: rows[1:]},
	}))

	wb, err := workbook.Read(p)
	require.NoError(t, err)
	names := wb.Metadata.SheetNames
	require.Len(t, names, 3)
	assert.Equal(t, strings.Repeat("x", 31), names[0])
	assert.Equal(t, strings.Repeat("x", 29)+"_1", names[1])
	assert.Equal(t, "Sheet3", names[2])
	for _, n := range names {
		assert.LessOrEqual(t, len(n), export.MaxSheetName)
	}

	s := wb.Sheets[0]
	assert.Equal(t, cols, s.Columns)
	require.Len(t, s.Rows, 2)
	assert.True(t, s.Rows[0].Get("Date").Instant().Equal(day))
	assert.Equal(t, analysis.Number(4), s.Rows[0].Get("Units"))
	assert.Equal(t, analysis.Bool(true), s.Rows[0].Get("Promo"))
	assert.True(t, s.Rows[1].Get("Units").IsNull())
}

func TestWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, export.WriteFile(p, []byte("first")))
	require.NoError(t, export.WriteFile(p, []byte("second")))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
