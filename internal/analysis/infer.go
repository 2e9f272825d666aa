package analysis

import (
	"math"
	"regexp"
	"strings"
)

const typeSampleSize = 200

var (
	groupedNumber = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})*(\.\d+)?$`)
	plainNumber   = regexp.MustCompile(`^[-+]?\d*(\.\d+)?$`)
	hasDigit      = regexp.MustCompile(`\d`)
)

// InferType classifies a single cell. The boolean result is false for empty
// cells, which carry no type signal.
func InferType(v Value) (ColumnType, bool) {
	switch v.kind {
	case KindNull:
		return "", false
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return TypeText, true
		}
		return TypeNumeric, true
	case KindBool:
		return TypeBoolean, true
	case KindTime:
		return TypeDatetime, true
	}
	if v.str == "" {
		return "", false
	}
	s := strings.TrimSpace(v.str)
	if s == "true" || s == "false" {
		return TypeBoolean, true
	}
	if looksNumeric(s) {
		return TypeNumeric, true
	}
	if _, ok := parseDate(s); ok {
		return TypeDatetime, true
	}
	return TypeText, true
}

// looksNumeric accepts grouped ("1,234.5") and plain ("-0.25", ".5")
// decimals. A bare sign or dot is not a number.
func looksNumeric(s string) bool {
	if !hasDigit.MatchString(s) {
		return false
	}
	return groupedNumber.MatchString(s) || plainNumber.MatchString(s)
}

// InferColumnType resolves a column's type from its first 200 non-empty
// values. Low-cardinality text becomes categorical, as do numeric codes with
// very few distinct values. A column with no values is text.
func InferColumnType(values []Value) ColumnType {
	sample := make([]Value, 0, typeSampleSize)
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		sample = append(sample, v)
		if len(sample) == typeSampleSize {
			break
		}
	}
	if len(sample) == 0 {
		return TypeText
	}

	votes := make(map[ColumnType]int, len(columnTypeOrder))
	distinct := make(map[string]struct{}, len(sample))
	for _, v := range sample {
		if t, ok := InferType(v); ok {
			votes[t]++
		}
		distinct[v.String()] = struct{}{}
	}

	best := columnTypeOrder[0]
	for _, t := range columnTypeOrder[1:] {
		if votes[t] > votes[best] {
			best = t
		}
	}
	ratio := float64(len(distinct)) / float64(len(sample))
	switch {
	case best == TypeText && ratio < 0.2:
		return TypeCategorical
	case best == TypeNumeric && ratio < 0.05:
		return TypeCategorical
	}
	return best
}
