package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Aggregation folds the values observed on one day into a single point.
type Aggregation string

const (
	AggregateMean  Aggregation = "mean"
	AggregateSum   Aggregation = "sum"
	AggregateCount Aggregation = "count"
)

// ParseAggregation accepts mean, sum or count (case-insensitive). Empty
// input is mean.
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(strings.TrimSpace(s))) {
	case "", AggregateMean:
		return AggregateMean, nil
	case AggregateSum:
		return AggregateSum, nil
	case AggregateCount:
		return AggregateCount, nil
	}
	return "", fmt.Errorf("unsupported aggregation: %q (use mean|sum|count)", s)
}

func (a Aggregation) apply(vals []float64) float64 {
	switch a {
	case AggregateCount:
		return float64(len(vals))
	case AggregateSum:
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return saturate(total)
	default:
		mean, _ := MeanStd(vals)
		return mean
	}
}

const dayLayout = "2006-01-02"

// TemporalTrends groups rows by UTC calendar day of dateColumn and folds each
// numeric column per day with agg. Rows whose date does not parse are
// skipped; a day with no valid value for a column reports 0.
func TemporalTrends(rows []Row, dateColumn string, numericColumns []string, agg Aggregation) TemporalTrend {
	if agg == "" {
		agg = AggregateMean
	}
	byDay := make(map[string]map[string][]float64)
	for _, r := range rows {
		t, ok := ToTime(r.Get(dateColumn))
		if !ok {
			continue
		}
		key := t.UTC().Format(dayLayout)
		entry, ok := byDay[key]
		if !ok {
			entry = make(map[string][]float64, len(numericColumns))
			byDay[key] = entry
		}
		for _, c := range numericColumns {
			if f, ok := ToNumber(r.Get(c)); ok {
				entry[c] = append(entry[c], f)
			}
		}
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		day, _ := time.Parse(dayLayout, k)
		point := TrendPoint{Date: day, Values: make(map[string]float64, len(numericColumns))}
		for _, c := range numericColumns {
			point.Values[c] = agg.apply(byDay[k][c])
		}
		series = append(series, point)
	}
	return TemporalTrend{DateColumn: dateColumn, Aggregation: agg, Series: series}
}
