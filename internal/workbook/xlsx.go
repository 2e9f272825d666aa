package workbook

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xlsm"
}

func (xlsxReader) Read(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		s, err := readSheet(f, name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

// readSheet uses the first row as headers and converts each remaining cell
// by its stored type. Fully blank rows are dropped.
func readSheet(f *excelize.File, name string) (Sheet, error) {
	grid, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, err
	}
	if len(grid) == 0 {
		return Sheet{Name: name}, nil
	}
	cols := headerNames(grid[0])
	cv := cellConverter{f: f, sheet: name, dateStyle: map[int]bool{}, date1904: uses1904(f)}

	var rows []analysis.Row
	for r := 1; r < len(grid); r++ {
		vals := make([]analysis.Value, len(cols))
		for c := range cols {
			if c >= len(grid[r]) || grid[r][c] == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return Sheet{}, err
			}
			vals[c] = cv.convert(cell, grid[r][c])
		}
		if blank(vals) {
			continue
		}
		rows = append(rows, analysis.NewRow(cols, vals))
	}
	return Sheet{Name: name, Columns: cols, Rows: rows}, nil
}

type cellConverter struct {
	f         *excelize.File
	sheet     string
	dateStyle map[int]bool
	date1904  bool
}

func (cv cellConverter) convert(cell, raw string) analysis.Value {
	typ, err := cv.f.GetCellType(cv.sheet, cell)
	if err != nil {
		return analysis.String(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return analysis.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeDate:
		if t, ok := analysis.ToTime(analysis.String(raw)); ok {
			return analysis.Time(t)
		}
		return analysis.String(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return analysis.String(raw)
		}
		if cv.isDateStyled(cell) {
			if t, err := excelize.ExcelDateToTime(num, cv.date1904); err == nil {
				return analysis.Time(t.UTC())
			}
		}
		return analysis.Number(num)
	default:
		return analysis.String(raw)
	}
}

func (cv cellConverter) isDateStyled(cell string) bool {
	id, err := cv.f.GetCellStyle(cv.sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if known, ok := cv.dateStyle[id]; ok {
		return known
	}
	style, err := cv.f.GetStyle(id)
	isDate := err == nil && style != nil && dateFormat(style.NumFmt, style.CustomNumFmt)
	cv.dateStyle[id] = isDate
	return isDate
}

// dateFormat reports whether a number format renders a date or time.
func dateFormat(id int, custom *string) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	if custom == nil {
		return false
	}
	return customDateFormat(*custom)
}

// customDateFormat looks for date tokens outside quoted literals and
// bracketed sections such as colours or locales.
func customDateFormat(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '\\':
			i++
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			switch ch | 0x20 {
			case 'y', 'd', 'm', 'h', 's':
				return true
			}
		}
	}
	return false
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	return err == nil && props.Date1904 != nil && *props.Date1904
}

