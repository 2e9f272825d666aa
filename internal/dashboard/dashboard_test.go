package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
	"github.com/KaramelBytes/insightforge-cli/internal/dashboard"
	"github.com/KaramelBytes/insightforge-cli/internal/workbook"
)

func sampleSheet(t *testing.T) workbook.Sheet {
	t.Helper()
	wb, err := workbook.Sample(workbook.SampleOptions{Seed: 42, Days: 60, End: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	return wb.Sheets[0]
}

func TestBuildSnapshot(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := dashboard.New(zap.New(core), analysis.ChartOptions{Bins: 8, Aggregation: analysis.AggregateSum})
	sheet := sampleSheet(t)

	filters := analysis.FiltersState{CategoryColumn: "Region", SelectedCategories: []string{"North", "South"}}
	snap, err := svc.Build(context.Background(), sheet, filters)
	require.NoError(t, err)

	assert.Equal(t, 60, snap.RowCount)
	assert.Equal(t, 60, snap.Profile.RowCount, "profile covers unfiltered rows")
	assert.Equal(t, analysis.ProfileData(sheet.Rows), snap.Profile)
	assert.Equal(t, analysis.DeriveInsights(snap.Profile, sheet.Rows), snap.Insights)
	assert.Equal(t, "indigo", snap.Chart.Palette)
	assert.Equal(t, analysis.ChartSuggestions(snap.Profile), snap.Charts)
	assert.Contains(t, snap.Charts, analysis.SuggestTimeSeries)

	for _, r := range snap.Filtered {
		assert.Contains(t, []string{"North", "South"}, r.Get("Region").String())
	}
	assert.Less(t, len(snap.Filtered), 60)

	require.NotNil(t, snap.Trend)
	assert.Equal(t, "Date", snap.Trend.DateColumn)
	assert.Equal(t, analysis.AggregateSum, snap.Trend.Aggregation)
	assert.Len(t, snap.Trend.Series, len(snap.Filtered))

	assert.Equal(t, snap.Profile.NumericColumns, snap.Correlation.Columns)
	for _, col := range snap.Profile.NumericColumns {
		assert.Len(t, snap.Histograms[col], 8, col)
		total := 0
		for _, b := range snap.Histograms[col] {
			total += b.Count
		}
		assert.Equal(t, len(snap.Series[col]), total, col)
	}
	require.Contains(t, snap.ValueCounts, "Region")
	require.NotNil(t, snap.CrossTab)
	assert.LessOrEqual(t, len(snap.Missing.Mask), 50)

	entries := logs.FilterMessage("built snapshot").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(60), entries[0].ContextMap()["rows"])
}

func TestBuildWarnsOnBadBound(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := dashboard.New(zap.New(core), analysis.ChartOptions{})
	snap, err := svc.Build(context.Background(), sampleSheet(t), analysis.FiltersState{DateColumn: "Date", DateFrom: "last week"})
	require.NoError(t, err)
	assert.Len(t, snap.Filtered, 60, "unparseable bound is ignored")
	assert.Equal(t, 1, logs.FilterMessage("ignoring filter bound").Len())
	assert.Equal(t, analysis.DefaultBins, svc.Options().Bins)
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dashboard.New(nil, analysis.ChartOptions{}).Build(ctx, sampleSheet(t), analysis.FiltersState{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildWorkbookScopesFilters(t *testing.T) {
	cols := []string{"Team", "Score"}
	other := workbook.Sheet{Name: "Scores", Columns: cols, Rows: []analysis.Row{
		analysis.NewRow(cols, []analysis.Value{analysis.String("a"), analysis.Number(1)}),
		analysis.NewRow(cols, []analysis.Value{analysis.String("b"), analysis.Number(2)}),
	}}
	wb := workbook.New("book.xlsx", 0, []workbook.Sheet{sampleSheet(t), other})

	filters := analysis.FiltersState{CategoryColumn: "Region", SelectedCategories: []string{"East"}}
	snaps, err := dashboard.New(nil, analysis.ChartOptions{}).BuildWorkbook(context.Background(), wb, filters)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "Sheet1", snaps[0].Sheet)
	assert.Equal(t, "Scores", snaps[1].Sheet)
	assert.Len(t, snaps[1].Filtered, 2, "filter on a missing column is dropped")
	assert.True(t, snaps[1].Filters.IsZero())
	assert.Nil(t, snaps[1].Trend)
}
