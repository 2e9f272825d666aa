package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single raw workbook cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	b    bool
	str  string
	t    time.Time
}

func Null() Value { return Value{} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Float() float64 { return v.num }
func (v Value) Boolean() bool { return v.b }
func (v Value) Text() string { return v.str }
func (v Value) Instant() time.Time { return v.t }

// IsEmpty reports whether the cell carries no signal: null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// String renders the cell the way it is compared and counted.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.str
	case KindTime:
		return v.t.UTC().Format(time.RFC3339)
	default:
		return "null"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Native returns the Go scalar held by v, or nil for null.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindString:
		return v.str
	case KindTime:
		return v.t
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(v.num)), nil
	case KindTime:
		return json.Marshal(v.t.UTC().Format(time.RFC3339))
	case KindNull:
		return []byte("null"), nil
	default:
		return json.Marshal(v.Native())
	}
}

func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindTime {
		return v.t.UTC().Format(time.RFC3339), nil
	}
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return nil, nil
	}
	return v.Native(), nil
}

// Row is one record of a sheet. Column order is preserved; rows are never
// modified after construction.
type Row struct {
	cols []string
	vals map[string]Value
}

// NewRow pairs column names with values. Missing trailing values are null.
func NewRow(cols []string, vals []Value) Row {
	r := Row{cols: make([]string, len(cols)), vals: make(map[string]Value, len(cols))}
	copy(r.cols, cols)
	for i, c := range cols {
		if i < len(vals) {
			r.vals[c] = vals[i]
		} else {
			r.vals[c] = Null()
		}
	}
	return r
}

// Get returns the cell under col. Absent keys read as null.
func (r Row) Get(col string) Value {
	return r.vals[col]
}

// Columns returns a copy of the row's key order.
func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

func (r Row) Len() int { return len(r.cols) }

// Values returns the cells in column order.
func (r Row) Values() []Value {
	out := make([]Value, len(r.cols))
	for i, c := range r.cols {
		out[i] = r.vals[c]
	}
	return out
}

// MarshalJSON writes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		b, err := r.vals[c].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits an ordered mapping so YAML output keeps column order.
func (r Row) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range r.cols {
		var k, v yaml.Node
		if err := k.Encode(c); err != nil {
			return nil, err
		}
		native, err := r.vals[c].MarshalYAML()
		if err != nil {
			return nil, err
		}
		if err := v.Encode(native); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &k, &v)
	}
	return node, nil
}

// Columns returns the column set of a sheet, taken from its first row.
func Columns(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns()
}
