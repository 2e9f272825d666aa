package analysis

import (
	"math"
	"sort"
	"time"
)

const (
	sampleValueCount = 5
	topCategoryCount = 10
	msPerDay         = 86_400_000
)

// ProfileData builds the dataset profile of rows. The column set is taken
// from the first row; an empty input yields an all-zero profile with
// completeness 1.
func ProfileData(rows []Row) DatasetProfile {
	names := Columns(rows)
	p := DatasetProfile{
		RowCount:           len(rows),
		ColumnCount:        len(names),
		Columns:            make([]ColumnProfile, 0, len(names)),
		NumericColumns:     []string{},
		CategoricalColumns: []string{},
		DatetimeColumns:    []string{},
		BooleanColumns:     []string{},
	}

	missing := 0
	for _, name := range names {
		col := profileColumn(name, ColumnValues(rows, name))
		missing += col.NullCount
		p.Columns = append(p.Columns, col)
		switch col.Type {
		case TypeNumeric:
			p.NumericColumns = append(p.NumericColumns, name)
		case TypeCategorical:
			p.CategoricalColumns = append(p.CategoricalColumns, name)
		case TypeDatetime:
			p.DatetimeColumns = append(p.DatetimeColumns, name)
		case TypeBoolean:
			p.BooleanColumns = append(p.BooleanColumns, name)
		}
	}

	p.Completeness = 1
	if cells := len(rows) * len(names); cells > 0 {
		p.Completeness = 1 - float64(missing)/float64(cells)
	}
	return p
}

// ColumnValues extracts one column across rows; absent keys read as null.
func ColumnValues(rows []Row, col string) []Value {
	out := make([]Value, len(rows))
	for i, r := range rows {
		out[i] = r.Get(col)
	}
	return out
}

func profileColumn(name string, values []Value) ColumnProfile {
	nonNull := make([]Value, 0, len(values))
	for _, v := range values {
		if !v.IsEmpty() {
			nonNull = append(nonNull, v)
		}
	}
	typ := InferColumnType(values)

	distinct := make(map[string]struct{}, len(nonNull))
	for _, v := range nonNull {
		distinct[v.String()] = struct{}{}
	}
	samples := nonNull
	if len(samples) > sampleValueCount {
		samples = samples[:sampleValueCount]
	}

	col := ColumnProfile{
		Name:         name,
		Type:         typ,
		NonNullCount: len(nonNull),
		NullCount:    len(values) - len(nonNull),
		UniqueCount:  len(distinct),
		SampleValues: append([]Value(nil), samples...),
	}

	switch typ {
	case TypeNumeric:
		col.Stats = numericStats(numbers(nonNull))
	case TypeCategorical, TypeText, TypeBoolean:
		col.TopCategories = topCategories(nonNull, topCategoryCount)
	case TypeDatetime:
		col.DateCoverage = dateCoverage(nonNull)
	}
	return col
}

// numbers coerces values and drops those that do not yield a finite number.
func numbers(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := ToNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func numericStats(nums []float64) *NumericStats {
	q1, median, q3 := quartiles(nums)
	mean, std := MeanStd(nums)
	lo, hi := minMax(nums)
	return &NumericStats{
		Count:    len(nums),
		Mean:     mean,
		Median:   median,
		Std:      std,
		Min:      lo,
		Max:      hi,
		Q1:       q1,
		Q3:       q3,
		IQR:      saturate(q3 - q1),
		Skewness: Skewness(nums),
	}
}

// topCategories counts rendered values and keeps the n most frequent. Equal
// counts keep the order in which values were first seen.
func topCategories(values []Value, n int) []CategoryCount {
	counts := make([]CategoryCount, 0)
	index := make(map[string]int)
	for _, v := range values {
		key := v.String()
		if i, ok := index[key]; ok {
			counts[i].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, CategoryCount{Value: key, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

func dateCoverage(values []Value) *DateCoverage {
	var start, end time.Time
	seen := false
	for _, v := range values {
		t, ok := ToTime(v)
		if !ok {
			continue
		}
		if !seen || t.Before(start) {
			start = t
		}
		if !seen || t.After(end) {
			end = t
		}
		seen = true
	}
	if !seen {
		epoch := time.Unix(0, 0).UTC()
		return &DateCoverage{Start: epoch, End: epoch}
	}
	days := int(math.Round(float64(end.Sub(start).Milliseconds()) / msPerDay))
	if days < 0 {
		days = 0
	}
	return &DateCoverage{Start: start, End: end, Days: days}
}
