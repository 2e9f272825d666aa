package analysis

import (
	"reflect"
	"testing"
	"time"
)

func TestCorrelationMatrixLinearPair(t *testing.T) {
	cols := []string{"A", "B", "C"}
	rows := make([]Row, 10)
	for i := range rows {
		a := float64(i + 1)
		rows[i] = NewRow(cols, []Value{Number(a), Number(2 * a), Number(3)})
	}
	m := CorrelationMatrix(rows, cols)
	r, ok := m.At("A", "B")
	if !ok || !approx(r, 1) {
		t.Fatalf("r(A,B) = %v", r)
	}
	for i := range cols {
		if m.Values[i][i] != 1 {
			t.Fatalf("diagonal[%d] = %v", i, m.Values[i][i])
		}
		for j := range cols {
			if m.Values[i][j] != m.Values[j][i] {
				t.Fatalf("asymmetric at %d,%d", i, j)
			}
		}
	}
	if r, _ := m.At("A", "C"); r != 0 {
		t.Fatalf("constant column correlation = %v", r)
	}

	p := ProfileData(rows)
	ins := DeriveInsights(p, rows)
	if len(ins.StrongCorrelations) != 1 {
		t.Fatalf("strong correlations = %+v", ins.StrongCorrelations)
	}
	pair := ins.StrongCorrelations[0]
	if pair.A != "A" || pair.B != "B" || !approx(pair.R, 1) {
		t.Fatalf("pair = %+v", pair)
	}
	if ins.Recommendations[len(ins.Recommendations)-1] != RecommendDecorrelate {
		t.Fatalf("recommendations = %v", ins.Recommendations)
	}
}

func TestCorrelationMatrixCoercesColumnsIndependently(t *testing.T) {
	cols := []string{"x", "y"}
	rows := []Row{
		NewRow(cols, []Value{Number(1), String("n/a")}),
		NewRow(cols, []Value{Number(2), Number(10)}),
		NewRow(cols, []Value{Number(3), Number(20)}),
		NewRow(cols, []Value{Number(4), Number(30)}),
	}
	// x = 1,2,3,4 and y = 10,20,30 correlate over the shared prefix
	m := CorrelationMatrix(rows, cols)
	if r, _ := m.At("x", "y"); !approx(r, 1) {
		t.Fatalf("r = %v", r)
	}
}

func TestSeasonalityWeeklyPattern(t *testing.T) {
	cols := []string{"Day", "Visits"}
	weekly := []float64{120, 80, 75, 70, 90, 200, 220}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []Row
	for i := 0; i < 42; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		rows = append(rows, NewRow(cols, []Value{String(day), Number(weekly[i%7])}))
	}
	p := ProfileData(rows)
	if !reflect.DeepEqual(p.DatetimeColumns, []string{"Day"}) || !reflect.DeepEqual(p.NumericColumns, []string{"Visits"}) {
		t.Fatalf("profile columns = %v %v", p.DatetimeColumns, p.NumericColumns)
	}
	ins := DeriveInsights(p, rows)
	found := false
	for _, s := range ins.SeasonalityCandidates {
		if s.Column == "Visits" && s.Lag == 7 {
			found = true
			if s.ACF <= 0.5 || s.EffectiveLag != 7 {
				t.Fatalf("candidate = %+v", s)
			}
		}
	}
	if !found {
		t.Fatalf("weekly lag not detected: %+v", ins.SeasonalityCandidates)
	}
}

func TestSeasonalityClampsLagToHalfSeries(t *testing.T) {
	cols := []string{"Day", "v"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []Row
	for i := 0; i < 10; i++ {
		rows = append(rows, NewRow(cols, []Value{Time(start.AddDate(0, 0, i)), Number(float64(i % 5 * 3))}))
	}
	p := ProfileData(rows)
	ins := DeriveInsights(p, rows)
	for _, s := range ins.SeasonalityCandidates {
		if s.EffectiveLag > 5 {
			t.Fatalf("lag not clamped: %+v", s)
		}
	}
}

func TestCategoryImbalance(t *testing.T) {
	cols := []string{"Segment"}
	rows := make([]Row, 100)
	for i := range rows {
		seg := "Retail"
		switch {
		case i >= 95:
			seg = "Wholesale"
		case i >= 90:
			seg = "Online"
		}
		rows[i] = NewRow(cols, []Value{String(seg)})
	}
	p := ProfileData(rows)
	if p.Columns[0].Type != TypeCategorical {
		t.Fatalf("type = %s", p.Columns[0].Type)
	}
	ins := DeriveInsights(p, rows)
	if len(ins.CategoryImbalance) != 1 {
		t.Fatalf("imbalance = %+v", ins.CategoryImbalance)
	}
	got := ins.CategoryImbalance[0]
	if got.Name != "Segment" || got.Top != "Retail" || !approx(got.Share, 0.9) {
		t.Fatalf("imbalance = %+v", got)
	}
	if !reflect.DeepEqual(ins.Recommendations, []string{RecommendEncode}) {
		t.Fatalf("recommendations = %v", ins.Recommendations)
	}
}

func TestHighMissingSortedDescending(t *testing.T) {
	cols := []string{"a", "b", "c"}
	rows := make([]Row, 10)
	for i := range rows {
		a, b := Number(float64(i)), Number(float64(i*i))
		if i < 3 {
			a = Null()
		}
		if i < 6 {
			b = Null()
		}
		rows[i] = NewRow(cols, []Value{a, b, String("x")})
	}
	ins := DeriveInsights(ProfileData(rows), rows)
	want := []MissingColumn{{Name: "b", MissingRate: 0.6}, {Name: "a", MissingRate: 0.3}}
	if !reflect.DeepEqual(ins.HighMissingColumns, want) {
		t.Fatalf("missing = %+v", ins.HighMissingColumns)
	}
	if ins.Recommendations[0] != RecommendImpute {
		t.Fatalf("recommendations = %v", ins.Recommendations)
	}
}

func TestRecommendationOrder(t *testing.T) {
	cols := []string{"n1", "n2", "n3", "n4", "n5", "n6", "seg"}
	rows := make([]Row, 40)
	for i := range rows {
		base := float64(i + 1)
		vals := []Value{
			Number(base), Number(base * 2), Number(float64((i * 13) % 17)),
			Number(float64((i * 7) % 11)), Number(float64((i * 5) % 19)), Number(float64((i * 3) % 23)),
			String("main"),
		}
		if i >= 37 {
			vals[2] = Number(1000)
		}
		if i%2 == 0 {
			vals[5] = Null()
		}
		if i%10 == 0 {
			vals[6] = String("other")
		}
		rows[i] = NewRow(cols, vals)
	}
	p := ProfileData(rows)
	if len(p.NumericColumns) != 6 {
		t.Fatalf("numeric columns = %v", p.NumericColumns)
	}
	ins := DeriveInsights(p, rows)
	want := []string{RecommendImpute, RecommendRobustScale, RecommendEncode, RecommendNormalize, RecommendDecorrelate}
	if !reflect.DeepEqual(ins.Recommendations, want) {
		t.Fatalf("recommendations = %v", ins.Recommendations)
	}
}

func TestDetectOutliersUniformColumn(t *testing.T) {
	rows := numRows("v", 1, 2, 3, 4, 5, 6, 7, 8)
	out := DetectOutliers(rows, []string{"v"})
	if len(out) != 1 || out[0].OutlierRate != 0 || out[0].Count != 0 {
		t.Fatalf("uniform = %+v", out)
	}
	if got := DetectOutliers(numRows("v", 1, 2, 3, 400), []string{"v"}); len(got) != 0 {
		t.Fatalf("fewer than five values must be skipped: %+v", got)
	}
}

func TestTemporalTrendsAggregation(t *testing.T) {
	cols := []string{"d", "x"}
	rows := []Row{
		NewRow(cols, []Value{String("2024-01-02T10:00:00Z"), Number(4)}),
		NewRow(cols, []Value{String("2024-01-01"), Number(1)}),
		NewRow(cols, []Value{String("2024-01-02T18:30:00Z"), Number(6)}),
		NewRow(cols, []Value{String("2024-01-03"), String("n/a")}),
		NewRow(cols, []Value{String("garbage"), Number(99)}),
	}
	mean := TemporalTrends(rows, "d", []string{"x"}, AggregateMean)
	if len(mean.Series) != 3 {
		t.Fatalf("days = %d", len(mean.Series))
	}
	if !reflect.DeepEqual(mean.Column("x"), []float64{1, 5, 0}) {
		t.Fatalf("mean = %v", mean.Column("x"))
	}
	if mean.Series[0].Date.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("not sorted: %v", mean.Series[0].Date)
	}
	sum := TemporalTrends(rows, "d", []string{"x"}, AggregateSum)
	if !reflect.DeepEqual(sum.Column("x"), []float64{1, 10, 0}) {
		t.Fatalf("sum = %v", sum.Column("x"))
	}
	count := TemporalTrends(rows, "d", []string{"x"}, AggregateCount)
	if !reflect.DeepEqual(count.Column("x"), []float64{1, 2, 0}) {
		t.Fatalf("count = %v", count.Column("x"))
	}
}

func TestParseAggregation(t *testing.T) {
	for in, want := range map[string]Aggregation{"": AggregateMean, "SUM": AggregateSum, " count ": AggregateCount} {
		got, err := ParseAggregation(in)
		if err != nil || got != want {
			t.Fatalf("ParseAggregation(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAggregation("median"); err == nil {
		t.Fatalf("expected error for median")
	}
}

func TestChartSuggestions(t *testing.T) {
	if got := ChartSuggestions(DatasetProfile{}); len(got) != 0 {
		t.Fatalf("empty profile suggested %v", got)
	}

	one := DatasetProfile{NumericColumns: []string{"Units"}}
	if got := ChartSuggestions(one); !reflect.DeepEqual(got, []string{SuggestDistributions}) {
		t.Fatalf("single numeric: %v", got)
	}

	cols := []string{"Date", "Region", "Units", "Revenue"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	regions := []string{"North", "South", "East"}
	rows := make([]Row, 30)
	for i := range rows {
		rows[i] = NewRow(cols, []Value{
			Time(start.AddDate(0, 0, i)),
			String(regions[i%3]),
			Number(float64(i % 7)),
			Number(float64(i * 3)),
		})
	}
	want := []string{SuggestDistributions, SuggestRelationships, SuggestTimeSeries, SuggestProportions}
	if got := ChartSuggestions(ProfileData(rows)); !reflect.DeepEqual(got, want) {
		t.Fatalf("mixed sheet: %v", got)
	}
}
