// Package dashboard derives everything a dashboard view shows for a sheet:
// the profile, insights, trend, filtered rows and chart aggregates.
package dashboard

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/logging"
	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

const (
	// categoryCharts is how many categorical columns get value counts.
	categoryCharts = 2
	maskRows       = 50
	maskColumns    = 30
)

// Snapshot is an immutable view of one sheet under one filter selection.
type Snapshot struct {
	Sheet       string                              `json:"sheet" yaml:"sheet"`
	Filters     analysis.FiltersState               `json:"filters" yaml:"filters"`
	Chart       analysis.ChartOptions               `json:"chart" yaml:"chart"`
	Profile     analysis.DatasetProfile             `json:"profile" yaml:"profile"`
	Insights    analysis.Insights                   `json:"insights" yaml:"insights"`
	Charts      []string                            `json:"chart_suggestions" yaml:"chart_suggestions"`
	Correlation analysis.CorrMatrix                 `json:"correlation" yaml:"correlation"`
	Trend       *analysis.TemporalTrend             `json:"trend,omitempty" yaml:"trend,omitempty"`
	RowCount    int                                 `json:"row_count" yaml:"row_count"`
	Filtered    []analysis.Row                      `json:"-" yaml:"-"`
	Series      map[string][]float64                `json:"-" yaml:"-"`
	Histograms  map[string][]analysis.Bucket        `json:"histograms" yaml:"histograms"`
	Boxes       map[string]analysis.Box             `json:"boxes" yaml:"boxes"`
	ValueCounts map[string][]analysis.CategoryCount `json:"value_counts" yaml:"value_counts"`
	CrossTab    *analysis.CrossTab                  `json:"cross_tab,omitempty" yaml:"cross_tab,omitempty"`
	Missing     MissingMask                         `json:"missing" yaml:"missing"`
}

type MissingMask struct {
	Columns []string `json:"columns" yaml:"columns"`
	Mask    [][]bool `json:"mask" yaml:"mask"`
}

// Service builds snapshots with fixed chart options.
type Service struct {
	logger *zap.Logger
	opts   analysis.ChartOptions
}

// New returns a Service. Zero chart fields fall back to the defaults.
func New(logger *zap.Logger, opts analysis.ChartOptions) *Service {
	def := analysis.DefaultChartOptions()
	if opts.Bins <= 0 {
		opts.Bins = def.Bins
	}
	if opts.Aggregation == "" {
		opts.Aggregation = def.Aggregation
	}
	if opts.Palette == "" {
		opts.Palette = def.Palette
	}
	return &Service{logger: logging.OrNop(logger).Named("dashboard"), opts: opts}
}

// Options returns the chart options in effect.
func (s *Service) Options() analysis.ChartOptions { return s.opts }

// Build profiles the full sheet and derives the filtered views concurrently.
// Profile and insights always cover every row; charts and the trend cover
// the filtered rows.
func (s *Service) Build(ctx context.Context, sheet workbook.Sheet, filters analysis.FiltersState) (*Snapshot, error) {
	start := time.Now()
	log := s.logger.With(zap.String("sheet", sheet.Name))
	if err := filters.Validate(); err != nil {
		log.Warn("ignoring filter bound", zap.Error(err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := sheet.Rows
	snap := &Snapshot{
		Sheet:    sheet.Name,
		Filters:  filters,
		Chart:    s.opts,
		Profile:  analysis.ProfileData(rows),
		RowCount: len(rows),
	}
	p := snap.Profile
	snap.Charts = analysis.ChartSuggestions(p)
	snap.Filtered = analysis.ApplyFilters(rows, filters)
	filtered := snap.Filtered
	log.Debug("profiled sheet",
		zap.Int("rows", p.RowCount),
		zap.Int("columns", p.ColumnCount),
		zap.Int("filtered_rows", len(filtered)))

	g, gctx := errgroup.WithContext(ctx)
	stage := func(name string, fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fn()
			return nil
		})
	}

	stage("insights", func() { snap.Insights = analysis.DeriveInsights(p, rows) })
	stage("correlation", func() { snap.Correlation = analysis.CorrelationMatrix(rows, p.NumericColumns) })
	if len(p.DatetimeColumns) > 0 {
		stage("trend", func() {
			t := analysis.TemporalTrends(filtered, p.DatetimeColumns[0], p.NumericColumns, s.opts.Aggregation)
			snap.Trend = &t
		})
	}
	stage("distributions", func() {
		snap.Series = analysis.NumericSeries(filtered, p.NumericColumns)
		snap.Histograms = make(map[string][]analysis.Bucket, len(snap.Series))
		snap.Boxes = make(map[string]analysis.Box, len(snap.Series))
		for col, vals := range snap.Series {
			snap.Histograms[col] = analysis.Histogram(vals, s.opts.Bins)
			if box, ok := analysis.BoxSummary(vals); ok {
				snap.Boxes[col] = box
			}
		}
	})
	stage("categories", func() {
		cats := p.CategoricalColumns
		if len(cats) > categoryCharts {
			cats = cats[:categoryCharts]
		}
		snap.ValueCounts = make(map[string][]analysis.CategoryCount, len(cats))
		for _, c := range cats {
			snap.ValueCounts[c] = analysis.ValueCounts(filtered, c)
		}
		if len(cats) == categoryCharts {
			ct := analysis.CrossTabColumns(filtered, cats[0], cats[1])
			snap.CrossTab = &ct
		}
	})
	stage("missing", func() {
		cols, mask := analysis.MissingMask(filtered, maskRows, maskColumns)
		snap.Missing = MissingMask{Columns: cols, Mask: mask}
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("built snapshot",
		zap.Int("rows", snap.RowCount),
		zap.Int("filtered_rows", len(filtered)),
		zap.Int("recommendations", len(snap.Insights.Recommendations)),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}

// BuildWorkbook builds one snapshot per sheet in parallel, keeping sheet
// order. Filter parts naming a column a sheet lacks are dropped for that
// sheet.
func (s *Service) BuildWorkbook(ctx context.Context, wb *workbook.Workbook, filters analysis.FiltersState) ([]*Snapshot, error) {
	out := make([]*Snapshot, len(wb.Sheets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sheet := range wb.Sheets {
		g.Go(func() error {
			snap, err := s.Build(gctx, sheet, ScopeFilters(sheet, filters))
			if err != nil {
				return fmt.Errorf("sheet %q: %w", sheet.Name, err)
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScopeFilters clears the parts of f that refer to columns sheet lacks.
func ScopeFilters(sheet workbook.Sheet, f analysis.FiltersState) analysis.FiltersState {
	cols := sheet.Columns
	if len(cols) == 0 {
		cols = analysis.Columns(sheet.Rows)
	}
	if f.DateColumn != "" && !slices.Contains(cols, f.DateColumn) {
		f.DateColumn, f.DateFrom, f.DateTo = "", "", ""
	}
	if f.CategoryColumn != "" && !slices.Contains(cols, f.CategoryColumn) {
		f.CategoryColumn, f.SelectedCategories = "", nil
	}
	return f
}
