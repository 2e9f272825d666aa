package analysis

// CorrelationMatrix computes Pearson r for every pair of columns. Each column
// is coerced on its own, so a pair is correlated over the common prefix of
// the two finite-value sequences rather than over aligned rows. The diagonal
// is 1 even for constant columns.
func CorrelationMatrix(rows []Row, columns []string) CorrMatrix {
	series := make([][]float64, len(columns))
	for i, c := range columns {
		series[i] = numbers(ColumnValues(rows, c))
	}
	n := len(columns)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r := Pearson(series[i], series[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	cols := make([]string, n)
	copy(cols, columns)
	return CorrMatrix{Columns: cols, Values: values}
}

// StrongPairs lists the unordered pairs (i < j) with |r| >= threshold.
func (m CorrMatrix) StrongPairs(threshold float64) []CorrelationPair {
	out := []CorrelationPair{}
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			r := m.Values[i][j]
			if r >= threshold || -r >= threshold {
				out = append(out, CorrelationPair{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	return out
}
