package analysis

import (
	"math"
	"sort"
)

// DefaultBins is the histogram bucket count used when none is given.
const DefaultBins = 20

// NumericSeries collects the finite coerced values of each column.
func NumericSeries(rows []Row, columns []string) map[string][]float64 {
	out := make(map[string][]float64, len(columns))
	for _, c := range columns {
		out[c] = numbers(ColumnValues(rows, c))
	}
	return out
}

// ValueCounts counts non-empty cells of col by rendered value. Entries are
// ordered by count, ties by first appearance.
func ValueCounts(rows []Row, col string) []CategoryCount {
	vals := make([]Value, 0, len(rows))
	for _, r := range rows {
		if v := r.Get(col); !v.IsEmpty() {
			vals = append(vals, v)
		}
	}
	return topCategories(vals, len(vals))
}

type Bucket struct {
	X0    float64 `json:"x0" yaml:"x0"`
	X1    float64 `json:"x1" yaml:"x1"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram splits [min, max] into bins equal-width buckets. A zero span
// uses width 1 so every value lands in the first bucket.
func Histogram(values []float64, bins int) []Bucket {
	if bins <= 0 {
		bins = DefaultBins
	}
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return []Bucket{}
	}
	lo, hi := minMax(finite)
	step := (hi - lo) / float64(bins)
	if math.IsInf(step, 0) {
		step = hi/float64(bins) - lo/float64(bins)
	}
	if step == 0 {
		step = 1
	}
	buckets := make([]Bucket, bins)
	for i := range buckets {
		buckets[i].X0 = saturate(lo + float64(i)*step)
		buckets[i].X1 = saturate(lo + float64(i+1)*step)
	}
	for _, v := range finite {
		pos := (v - lo) / step
		if math.IsInf(v-lo, 0) {
			pos = v/step - lo/step
		}
		idx := bins - 1
		if pos < float64(bins) {
			idx = int(math.Floor(pos))
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
	}
	return buckets
}

// Box is a five-number summary.
type Box struct {
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
}

// BoxSummary needs at least five finite values; otherwise ok is false.
func BoxSummary(values []float64) (Box, bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) < 5 {
		return Box{}, false
	}
	sort.Float64s(finite)
	return Box{
		Min:    finite[0],
		Q1:     Quantile(finite, 0.25),
		Median: Quantile(finite, 0.5),
		Q3:     Quantile(finite, 0.75),
		Max:    finite[len(finite)-1],
	}, true
}

// CrossTab counts co-occurring (row, column) labels. Keys keep first
// appearance order.
type CrossTab struct {
	Rows   []string `json:"rows" yaml:"rows"`
	Cols   []string `json:"cols" yaml:"cols"`
	Matrix [][]int  `json:"matrix" yaml:"matrix"`
}

// Pair is one observation for BuildCrossTab.
type Pair struct {
	A, B string
}

func BuildCrossTab(pairs []Pair) CrossTab {
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	ct := CrossTab{Rows: []string{}, Cols: []string{}}
	for _, p := range pairs {
		if _, ok := rowIdx[p.A]; !ok {
			rowIdx[p.A] = len(ct.Rows)
			ct.Rows = append(ct.Rows, p.A)
		}
		if _, ok := colIdx[p.B]; !ok {
			colIdx[p.B] = len(ct.Cols)
			ct.Cols = append(ct.Cols, p.B)
		}
	}
	ct.Matrix = make([][]int, len(ct.Rows))
	for i := range ct.Matrix {
		ct.Matrix[i] = make([]int, len(ct.Cols))
	}
	for _, p := range pairs {
		ct.Matrix[rowIdx[p.A]][colIdx[p.B]]++
	}
	return ct
}

// CrossTabColumns cross-tabulates two columns by rendered value. Nulls are
// counted under "null".
func CrossTabColumns(rows []Row, a, b string) CrossTab {
	pairs := make([]Pair, len(rows))
	for i, r := range rows {
		pairs[i] = Pair{A: r.Get(a).String(), B: r.Get(b).String()}
	}
	return BuildCrossTab(pairs)
}

// MissingMask marks empty cells for the first maxRows rows and maxCols
// columns. Non-positive limits mean no limit.
func MissingMask(rows []Row, maxRows, maxCols int) (columns []string, mask [][]bool) {
	columns = Columns(rows)
	if maxCols > 0 && len(columns) > maxCols {
		columns = columns[:maxCols]
	}
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	mask = make([][]bool, len(rows))
	for i, r := range rows {
		mask[i] = make([]bool, len(columns))
		for j, c := range columns {
			mask[i][j] = r.Get(c).IsEmpty()
		}
	}
	return columns, mask
}
