// Package report renders dataset profiles and insights as text reports.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

const maxCorrelationPairs = 10

type options struct {
	rows       []analysis.Row
	sampleRows int
	trend      *analysis.TemporalTrend
	corr       *analysis.CorrMatrix
	charts     []string
}

// Option adds optional sections to a report.
type Option func(*options)

// WithSampleRows appends a table of the first n rows.
func WithSampleRows(rows []analysis.Row, n int) Option {
	return func(o *options) {
		o.rows = rows
		o.sampleRows = n
	}
}

// WithCorrelations lists the strongest pairs of the matrix.
func WithCorrelations(m analysis.CorrMatrix) Option {
	return func(o *options) { o.corr = &m }
}

// WithChartSuggestions lists recommended visualizations after the
// recommendations.
func WithChartSuggestions(charts []string) Option {
	return func(o *options) { o.charts = charts }
}

// WithTrend appends the temporal trend summary.
func WithTrend(t analysis.TemporalTrend) Option {
	return func(o *options) { o.trend = &t }
}

// Markdown renders the profile and insights as a sectioned summary.
func Markdown(name string, p analysis.DatasetProfile, ins analysis.Insights, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		fmt.Fprintf(&b, "File: %s\n", name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", p.RowCount)
	fmt.Fprintf(&b, "Columns: %d\n", p.ColumnCount)
	fmt.Fprintf(&b, "Completeness: %.1f%%\n", p.Completeness*100)
	fmt.Fprintf(&b, "Types: numeric %d, categorical %d, datetime %d, boolean %d, text %d\n\n",
		len(p.NumericColumns), len(p.CategoricalColumns), len(p.DatetimeColumns),
		len(p.BooleanColumns), countType(p, analysis.TypeText))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Columns {
		writeColumn(&b, c)
	}

	if o.corr != nil && len(o.corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, pr := range topPairs(*o.corr, maxCorrelationPairs) {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", safeName(pr.A), safeName(pr.B), pr.R)
		}
	}

	if o.trend != nil && len(o.trend.Series) > 0 {
		writeTrend(&b, *o.trend)
	}

	b.WriteString("\n[INSIGHTS]\n")
	writeInsights(&b, ins)

	b.WriteString("\n[RECOMMENDATIONS]\n")
	if len(ins.Recommendations) == 0 {
		b.WriteString("- No specific recommendations.\n")
	}
	for _, r := range ins.Recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	if len(o.charts) > 0 {
		b.WriteString("\n[CHART SUGGESTIONS]\n")
		for _, c := range o.charts {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	if o.sampleRows > 0 && len(o.rows) > 0 {
		writeSampleRows(&b, o.rows, o.sampleRows)
	}
	return b.String()
}

func writeColumn(b *strings.Builder, c analysis.ColumnProfile) {
	fmt.Fprintf(b, "- %s: %s (non-null %d, missing %.1f%%, unique %d)",
		safeName(c.Name), c.Type, c.NonNullCount, c.MissingRate()*100, c.UniqueCount)
	switch {
	case c.Stats != nil:
		s := c.Stats
		fmt.Fprintf(b, "; min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", s.Min, s.Max, s.Mean, s.Median, s.Std)
	case c.DateCoverage != nil:
		d := c.DateCoverage
		fmt.Fprintf(b, "; %s to %s (%d days)", d.Start.Format("2006-01-02"), d.End.Format("2006-01-02"), d.Days)
	case len(c.TopCategories) > 0:
		b.WriteString("; top: ")
		for i, kv := range c.TopCategories {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s(%d)", safeVal(kv.Value), kv.Count)
		}
	case c.Type == analysis.TypeText && len(c.SampleValues) > 0:
		b.WriteString("; e.g., ")
		for i, v := range c.SampleValues {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(v.String()))
		}
	}
	b.WriteString("\n")
}

// topPairs lists the upper triangle ordered by |r|, ties by name.
func topPairs(m analysis.CorrMatrix, limit int) []analysis.CorrelationPair {
	var pairs []analysis.CorrelationPair
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, analysis.CorrelationPair{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

func writeInsights(b *strings.Builder, ins analysis.Insights) {
	wrote := false
	for _, c := range ins.StrongCorrelations {
		fmt.Fprintf(b, "- Strong correlation: %s ~ %s (r=%.3f)\n", safeName(c.A), safeName(c.B), c.R)
		wrote = true
	}
	for _, m := range ins.HighMissingColumns {
		fmt.Fprintf(b, "- High missing rate: %s (%.1f%%)\n", safeName(m.Name), m.MissingRate*100)
		wrote = true
	}
	for _, o := range ins.OutlierColumns {
		fmt.Fprintf(b, "- Outliers: %s (%d values, %.1f%% outside [%.4g, %.4g])\n",
			safeName(o.Name), o.Count, o.OutlierRate*100, o.Lower, o.Upper)
		wrote = true
	}
	for _, c := range ins.CategoryImbalance {
		fmt.Fprintf(b, "- Category imbalance: %s dominated by %s (%.1f%%)\n", safeName(c.Name), safeVal(c.Top), c.Share*100)
		wrote = true
	}
	for _, s := range ins.SeasonalityCandidates {
		fmt.Fprintf(b, "- Seasonality: %s at lag %d (acf=%.3f)\n", safeName(s.Column), s.EffectiveLag, s.ACF)
		wrote = true
	}
	if !wrote {
		b.WriteString("- No notable patterns detected.\n")
	}
}

func writeTrend(b *strings.Builder, t analysis.TemporalTrend) {
	first, last := t.Series[0], t.Series[len(t.Series)-1]
	b.WriteString("\n[TEMPORAL TRENDS]\n")
	fmt.Fprintf(b, "Date column: %s (%s per day, %d days from %s to %s)\n",
		safeName(t.DateColumn), t.Aggregation, len(t.Series),
		first.Date.Format("2006-01-02"), last.Date.Format("2006-01-02"))
	cols := make([]string, 0, len(first.Values))
	for k := range first.Values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	for _, c := range cols {
		fmt.Fprintf(b, "- %s: %.4g to %.4g\n", safeName(c), first.Values[c], last.Values[c])
	}
}

func writeSampleRows(b *strings.Builder, rows []analysis.Row, n int) {
	if n > len(rows) {
		n = len(rows)
	}
	cols := analysis.Columns(rows[:n])
	b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(c)))
	}
	b.WriteString(" |\n|")
	for range cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows[:n] {
		b.WriteString("| ")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			if v := r.Get(c); !v.IsNull() {
				b.WriteString(safeVal(v.String()))
			}
		}
		b.WriteString(" |\n")
	}
}

func countType(p analysis.DatasetProfile, t analysis.ColumnType) int {
	n := 0
	for _, c := range p.Columns {
		if c.Type == t {
			n++
		}
	}
	return n
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
