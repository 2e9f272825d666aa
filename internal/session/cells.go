package session

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

// cell is the tagged on-disk form of a Value. Numbers are stored as text so
// NaN and infinities survive.
type cell struct {
	K string `json:"k"`
	V string `json:"v,omitempty"`
}

const (
	kindNull   = "null"
	kindNumber = "num"
	kindBool   = "bool"
	kindString = "str"
	kindTime   = "time"
)

// storedRow carries its own column list only when it differs from the
// session's.
type storedRow struct {
	Cols  []string `json:"c,omitempty"`
	Cells []cell   `json:"v"`
}

func encodeValue(v analysis.Value) cell {
	switch v.Kind() {
	case analysis.KindNumber:
		return cell{K: kindNumber, V: strconv.FormatFloat(v.Float(), 'g', -1, 64)}
	case analysis.KindBool:
		return cell{K: kindBool, V: strconv.FormatBool(v.Boolean())}
	case analysis.KindString:
		return cell{K: kindString, V: v.Text()}
	case analysis.KindTime:
		return cell{K: kindTime, V: v.Instant().Format(time.RFC3339Nano)}
	default:
		return cell{K: kindNull}
	}
}

func decodeValue(c cell) (analysis.Value, error) {
	switch c.K {
	case kindNull, "":
		return analysis.Null(), nil
	case kindNumber:
		f, err := strconv.ParseFloat(c.V, 64)
		if err != nil {
			return analysis.Value{}, fmt.Errorf("number %q: %w", c.V, err)
		}
		return analysis.Number(f), nil
	case kindBool:
		b, err := strconv.ParseBool(c.V)
		if err != nil {
			return analysis.Value{}, fmt.Errorf("bool %q: %w", c.V, err)
		}
		return analysis.Bool(b), nil
	case kindString:
		return analysis.String(c.V), nil
	case kindTime:
		t, err := time.Parse(time.RFC3339Nano, c.V)
		if err != nil {
			return analysis.Value{}, fmt.Errorf("time %q: %w", c.V, err)
		}
		return analysis.Time(t), nil
	}
	return analysis.Value{}, fmt.Errorf("unknown cell kind %q", c.K)
}

func encodeRows(cols []string, rows []analysis.Row) []storedRow {
	out := make([]storedRow, len(rows))
	for i, r := range rows {
		rc := r.Columns()
		sr := storedRow{Cells: make([]cell, len(rc))}
		if !slices.Equal(rc, cols) {
			sr.Cols = rc
		}
		for j, v := range r.Values() {
			sr.Cells[j] = encodeValue(v)
		}
		out[i] = sr
	}
	return out
}

func decodeRows(cols []string, stored []storedRow) ([]analysis.Row, error) {
	rows := make([]analysis.Row, len(stored))
	for i, sr := range stored {
		rc := cols
		if len(sr.Cols) > 0 {
			rc = sr.Cols
		}
		if len(sr.Cells) > len(rc) {
			return nil, fmt.Errorf("row %d: %d cells for %d columns", i, len(sr.Cells), len(rc))
		}
		vals := make([]analysis.Value, len(sr.Cells))
		for j, c := range sr.Cells {
			v, err := decodeValue(c)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, rc[j], err)
			}
			vals[j] = v
		}
		rows[i] = analysis.NewRow(rc, vals)
	}
	return rows, nil
}
