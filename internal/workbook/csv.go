package workbook

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".csv" || ext == ".tsv"
}

// Read loads a delimited text file as a single sheet named after the file.
// Every cell stays a string; blank cells become null.
func (csvReader) Read(path string) ([]Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		delim = '\t'
	} else if head, _ := br.Peek(4096); len(head) > 0 {
		delim = sniffDelimiter(string(head))
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Sheet{{Name: sheetName(path)}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	cols := headerNames(header)

	var rows []analysis.Row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}
		vals := make([]analysis.Value, len(cols))
		for i := range cols {
			if i < len(rec) && strings.TrimSpace(rec[i]) != "" {
				vals[i] = analysis.String(rec[i])
			}
		}
		if blank(vals) {
			continue
		}
		rows = append(rows, analysis.NewRow(cols, vals))
	}
	return []Sheet{{Name: sheetName(path), Columns: cols, Rows: rows}}, nil
}

// sniffDelimiter picks the separator that appears most in the first line.
func sniffDelimiter(head string) rune {
	line, _, _ := strings.Cut(head, "\n")
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func sheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
