package analysis

import "time"

// ColumnType is the semantic type resolved for a column.
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDatetime    ColumnType = "datetime"
	TypeBoolean     ColumnType = "boolean"
	TypeText        ColumnType = "text"
)

// columnTypeOrder is the declaration order; it breaks ties during type voting.
var columnTypeOrder = []ColumnType{TypeNumeric, TypeCategorical, TypeDatetime, TypeBoolean, TypeText}

// NumericStats summarizes the coerced numeric values of a column.
type NumericStats struct {
	Count    int     `json:"count" yaml:"count"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	Std      float64 `json:"std" yaml:"std"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Q1       float64 `json:"q1" yaml:"q1"`
	Q3       float64 `json:"q3" yaml:"q3"`
	IQR      float64 `json:"iqr" yaml:"iqr"`
	Skewness float64 `json:"skewness" yaml:"skewness"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// DateCoverage is the span of valid instants observed in a datetime column.
type DateCoverage struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Days  int       `json:"days" yaml:"days"`
}

// ColumnProfile is the per-column summary. Stats is set only for numeric
// columns, TopCategories only for categorical, text and boolean columns, and
// DateCoverage only for datetime columns.
type ColumnProfile struct {
	Name          string          `json:"name" yaml:"name"`
	Type          ColumnType      `json:"type" yaml:"type"`
	NonNullCount  int             `json:"non_null_count" yaml:"non_null_count"`
	NullCount     int             `json:"null_count" yaml:"null_count"`
	UniqueCount   int             `json:"unique_count" yaml:"unique_count"`
	SampleValues  []Value         `json:"sample_values" yaml:"sample_values"`
	Stats         *NumericStats   `json:"stats,omitempty" yaml:"stats,omitempty"`
	TopCategories []CategoryCount `json:"top_categories,omitempty" yaml:"top_categories,omitempty"`
	DateCoverage  *DateCoverage   `json:"date_coverage,omitempty" yaml:"date_coverage,omitempty"`
}

// MissingRate is the share of null cells in the column.
func (c ColumnProfile) MissingRate() float64 {
	total := c.NonNullCount + c.NullCount
	if total == 0 {
		return 0
	}
	return float64(c.NullCount) / float64(total)
}

// DatasetProfile is the whole-sheet summary produced by ProfileData.
type DatasetProfile struct {
	RowCount           int             `json:"row_count" yaml:"row_count"`
	ColumnCount        int             `json:"column_count" yaml:"column_count"`
	Completeness       float64         `json:"completeness" yaml:"completeness"`
	Columns            []ColumnProfile `json:"columns" yaml:"columns"`
	NumericColumns     []string        `json:"numeric_columns" yaml:"numeric_columns"`
	CategoricalColumns []string        `json:"categorical_columns" yaml:"categorical_columns"`
	DatetimeColumns    []string        `json:"datetime_columns" yaml:"datetime_columns"`
	BooleanColumns     []string        `json:"boolean_columns" yaml:"boolean_columns"`
}

// Column looks up a column profile by name.
func (p DatasetProfile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// CorrMatrix is a dense symmetric Pearson matrix over Columns.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"`
}

// At returns r for the named pair.
func (m CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a && i < 0 {
			i = k
		}
		if c == b && j < 0 {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

type TrendPoint struct {
	Date   time.Time          `json:"date" yaml:"date"`
	Values map[string]float64 `json:"values" yaml:"values"`
}

// TemporalTrend is a day-ascending series aggregated per numeric column.
type TemporalTrend struct {
	DateColumn  string       `json:"date_column" yaml:"date_column"`
	Aggregation Aggregation  `json:"aggregation" yaml:"aggregation"`
	Series      []TrendPoint `json:"series" yaml:"series"`
}

// Column extracts the aggregated series of one numeric column.
func (t TemporalTrend) Column(name string) []float64 {
	out := make([]float64, len(t.Series))
	for i, p := range t.Series {
		out[i] = p.Values[name]
	}
	return out
}

type CorrelationPair struct {
	A string  `json:"a" yaml:"a"`
	B string  `json:"b" yaml:"b"`
	R float64 `json:"r" yaml:"r"`
}

type MissingColumn struct {
	Name        string  `json:"name" yaml:"name"`
	MissingRate float64 `json:"missing_rate" yaml:"missing_rate"`
}

// OutlierColumn reports the share of values outside the 1.5×IQR fence.
type OutlierColumn struct {
	Name        string  `json:"name" yaml:"name"`
	OutlierRate float64 `json:"outlier_rate" yaml:"outlier_rate"`
	Count       int     `json:"count" yaml:"count"`
	Lower       float64 `json:"lower" yaml:"lower"`
	Upper       float64 `json:"upper" yaml:"upper"`
}

type ImbalancedColumn struct {
	Name  string  `json:"name" yaml:"name"`
	Top   string  `json:"top" yaml:"top"`
	Share float64 `json:"share" yaml:"share"`
}

// SeasonalityCandidate records a nominal lag and the lag actually used after
// clamping to half the series length.
type SeasonalityCandidate struct {
	Column       string  `json:"column" yaml:"column"`
	Lag          int     `json:"lag" yaml:"lag"`
	EffectiveLag int     `json:"effective_lag" yaml:"effective_lag"`
	ACF          float64 `json:"acf" yaml:"acf"`
}

// Insights are the cross-column diagnostics derived from a profile.
type Insights struct {
	StrongCorrelations    []CorrelationPair      `json:"strong_correlations" yaml:"strong_correlations"`
	HighMissingColumns    []MissingColumn        `json:"high_missing_columns" yaml:"high_missing_columns"`
	OutlierColumns        []OutlierColumn        `json:"outlier_columns" yaml:"outlier_columns"`
	CategoryImbalance     []ImbalancedColumn     `json:"category_imbalance" yaml:"category_imbalance"`
	SeasonalityCandidates []SeasonalityCandidate `json:"seasonality_candidates" yaml:"seasonality_candidates"`
	Recommendations       []string               `json:"recommendations" yaml:"recommendations"`
}
