// Package export writes rows and reports to CSV, XLSX, HTML and Markdown.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/utils"
)

// MaxSheetName is the longest sheet name a workbook accepts.
const MaxSheetName = 31

// Sheet is a named set of rows to write into a workbook.
type Sheet struct {
	Name string
	Rows []analysis.Row
}

// RowsCSV writes a header of the union of row columns followed by one line
// per row. Null cells are empty; a cell containing a comma, quote or newline
// is quoted with inner quotes doubled.
func RowsCSV(w io.Writer, rows []analysis.Row) error {
	if len(rows) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	cols := analysis.Columns(rows)
	line := make([]string, len(cols))
	for i, c := range cols {
		line[i] = escapeCSV(c)
	}
	if _, err := bw.WriteString(strings.Join(line, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		for i, c := range cols {
			v := r.Get(c)
			if v.IsNull() {
				line[i] = ""
				continue
			}
			line[i] = escapeCSV(v.String())
		}
		if _, err := bw.WriteString(strings.Join(line, ",") + "\n"); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return bw.Flush()
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\n\"") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// WorkbookXLSX builds an in-memory workbook with one sheet per entry. Names
// are cut to MaxSheetName characters and made unique.
func WorkbookXLSX(sheets []Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, s := range sheets {
		name := uniqueSheetName(s.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, s.Rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, name string, rows []analysis.Row) error {
	cols := analysis.Columns(rows)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for r, row := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = row.Get(c).Native()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}

func uniqueSheetName(name string, index int, used map[string]bool) string {
	name = strings.NewReplacer(":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "").Replace(name)
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	base := truncate(name, MaxSheetName)
	name = base
	for n := 1; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		name = truncate(base, MaxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// WriteXLSX saves sheets as a workbook at path.
func WriteXLSX(path string, sheets []Sheet) error {
	f, err := WorkbookXLSX(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return WriteFile(path, buf.Bytes())
}

// WriteFile replaces path atomically.
func WriteFile(path string, data []byte) error {
	return utils.SafeWriteFile(path, data)
}
