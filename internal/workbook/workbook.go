package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

// DefaultMaxBytes is the upload limit applied when none is configured.
const DefaultMaxBytes int64 = 25 * 1024 * 1024

var (
	// ErrUnsupported indicates no registered reader handles the file type.
	ErrUnsupported = errors.New("unsupported file type")
	ErrTooLarge    = errors.New("file is too large")
	ErrNoSheets    = errors.New("the workbook contains no sheets")
	ErrNoSuchSheet = errors.New("sheet not found")
)

// Sheet is one named table. Every row shares Columns as its key order.
type Sheet struct {
	Name    string         `json:"name" yaml:"name"`
	Columns []string       `json:"columns" yaml:"columns"`
	Rows    []analysis.Row `json:"rows" yaml:"rows"`
}

type Metadata struct {
	SheetNames   []string `json:"sheet_names" yaml:"sheet_names"`
	TotalRows    int      `json:"total_rows" yaml:"total_rows"`
	TotalColumns int      `json:"total_columns" yaml:"total_columns"`
	FileName     string   `json:"file_name" yaml:"file_name"`
	FileSize     int64    `json:"file_size" yaml:"file_size"`
}

// Workbook is the parsed form of a spreadsheet file.
type Workbook struct {
	Sheets   []Sheet  `json:"sheets" yaml:"sheets"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// Sheet returns the named sheet, or the first one when name is empty.
func (w *Workbook) Sheet(name string) (Sheet, error) {
	if len(w.Sheets) == 0 {
		return Sheet{}, ErrNoSheets
	}
	if name == "" {
		return w.Sheets[0], nil
	}
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return Sheet{}, fmt.Errorf("%w: %q (available: %s)", ErrNoSuchSheet, name, strings.Join(w.Metadata.SheetNames, ", "))
}

// SheetAt returns the sheet at a 1-based index.
func (w *Workbook) SheetAt(index int) (Sheet, error) {
	if len(w.Sheets) == 0 {
		return Sheet{}, ErrNoSheets
	}
	if index < 1 || index > len(w.Sheets) {
		return Sheet{}, fmt.Errorf("%w: index %d out of range 1..%d", ErrNoSuchSheet, index, len(w.Sheets))
	}
	return w.Sheets[index-1], nil
}

// Reader parses one family of spreadsheet files.
type Reader interface {
	CanRead(filename string) bool
	Read(path string) ([]Sheet, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(xlsxReader{})
	Register(csvReader{})
}

func readerFor(path string) Reader {
	for _, r := range registry {
		if r.CanRead(path) {
			return r
		}
	}
	return nil
}

// Validate checks the extension and size of path before it is parsed. Both
// problems are reported together.
func Validate(path string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	var errs []error
	if readerFor(path) == nil {
		errs = append(errs, fmt.Errorf("%w: %s (use .xlsx, .xlsm, .csv or .tsv)", ErrUnsupported, filepath.Ext(path)))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat workbook: %w", err)
	}
	if info.Size() > maxBytes {
		errs = append(errs, fmt.Errorf("%w: max size is %dMB", ErrTooLarge, maxBytes/(1024*1024)))
	}
	return errors.Join(errs...)
}

// Read selects a reader by filename and parses every sheet.
func Read(path string) (*Workbook, error) {
	r := readerFor(path)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}
	sheets, err := r.Read(path)
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return New(filepath.Base(path), info.Size(), sheets), nil
}

// New assembles a workbook and its metadata from parsed sheets.
func New(fileName string, size int64, sheets []Sheet) *Workbook {
	md := Metadata{FileName: fileName, FileSize: size, SheetNames: make([]string, 0, len(sheets))}
	for _, s := range sheets {
		md.SheetNames = append(md.SheetNames, s.Name)
		md.TotalRows += len(s.Rows)
		if n := len(analysis.Columns(s.Rows)); n > md.TotalColumns {
			md.TotalColumns = n
		}
	}
	return &Workbook{Sheets: sheets, Metadata: md}
}

// headerNames names blank headers __EMPTY, __EMPTY_1, ... and suffixes
// repeated names with _1, _2, ...
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	next := make(map[string]int)
	for i, h := range raw {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "__EMPTY"
		}
		name := base
		for used[name] {
			next[base]++
			name = fmt.Sprintf("%s_%d", base, next[base])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func blank(vals []analysis.Value) bool {
	for _, v := range vals {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}
