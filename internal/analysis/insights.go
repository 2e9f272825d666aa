package analysis

import "sort"

// Thresholds used by DeriveInsights.
const (
	StrongCorrelationThreshold = 0.7
	HighMissingThreshold       = 0.2
	OutlierRateThreshold       = 0.05
	ImbalanceShareThreshold    = 0.6
	SeasonalityACFThreshold    = 0.5
	NormalizeNumericColumns    = 5

	minOutlierValues = 5
	iqrFence         = 1.5
)

// SeasonalityLags are the daily lags probed for repeating patterns.
var SeasonalityLags = []int{7, 12, 30}

const (
	RecommendImpute      = "Consider imputing missing values (mean/median/mode) or dropping columns with high missingness."
	RecommendRobustScale = "Winsorize or apply robust scaling to columns with many outliers."
	RecommendEncode      = "Encode categorical variables and consider techniques to handle class imbalance."
	RecommendNormalize   = "Normalize or standardize numeric features to improve comparability."
	RecommendDecorrelate = "High correlations detected; consider removing multicollinearity for modeling."
)

const (
	SuggestDistributions = "Histograms and box plots for numeric distributions"
	SuggestRelationships = "Correlation heatmap and scatter plot matrix to explore relationships"
	SuggestTimeSeries    = "Time series trends for temporal patterns"
	SuggestProportions   = "Bar and pie charts for categorical proportions"
)

// DetectOutliers applies the 1.5×IQR fence to every column that has at least
// five numeric values. Columns below that size are left out.
func DetectOutliers(rows []Row, numericColumns []string) []OutlierColumn {
	out := []OutlierColumn{}
	for _, c := range numericColumns {
		nums := numbers(ColumnValues(rows, c))
		if len(nums) < minOutlierValues {
			continue
		}
		q1, _, q3 := quartiles(nums)
		iqr := saturate(q3 - q1)
		lower, upper := saturate(q1-iqrFence*iqr), saturate(q3+iqrFence*iqr)
		count := 0
		for _, v := range nums {
			if v < lower || v > upper {
				count++
			}
		}
		out = append(out, OutlierColumn{
			Name:        c,
			OutlierRate: float64(count) / float64(len(nums)),
			Count:       count,
			Lower:       lower,
			Upper:       upper,
		})
	}
	return out
}

// DeriveInsights computes the cross-column diagnostics for a profile built
// from rows. It is pure; nothing is cached between calls.
func DeriveInsights(profile DatasetProfile, rows []Row) Insights {
	ins := Insights{
		StrongCorrelations:    []CorrelationPair{},
		HighMissingColumns:    []MissingColumn{},
		OutlierColumns:        []OutlierColumn{},
		CategoryImbalance:     []ImbalancedColumn{},
		SeasonalityCandidates: []SeasonalityCandidate{},
		Recommendations:       []string{},
	}

	if len(profile.NumericColumns) >= 2 {
		m := CorrelationMatrix(rows, profile.NumericColumns)
		ins.StrongCorrelations = m.StrongPairs(StrongCorrelationThreshold)
	}

	denom := profile.RowCount
	if denom == 0 {
		denom = 1
	}
	for _, c := range profile.Columns {
		rate := float64(c.NullCount) / float64(denom)
		if rate > HighMissingThreshold {
			ins.HighMissingColumns = append(ins.HighMissingColumns, MissingColumn{Name: c.Name, MissingRate: rate})
		}
	}
	sort.SliceStable(ins.HighMissingColumns, func(i, j int) bool {
		return ins.HighMissingColumns[i].MissingRate > ins.HighMissingColumns[j].MissingRate
	})

	for _, o := range DetectOutliers(rows, profile.NumericColumns) {
		if o.OutlierRate > OutlierRateThreshold {
			ins.OutlierColumns = append(ins.OutlierColumns, o)
		}
	}

	for _, c := range profile.Columns {
		if c.Type != TypeCategorical || len(c.TopCategories) == 0 {
			continue
		}
		nonNull := c.NonNullCount
		if nonNull == 0 {
			nonNull = 1
		}
		top := c.TopCategories[0]
		share := float64(top.Count) / float64(nonNull)
		if share > ImbalanceShareThreshold {
			ins.CategoryImbalance = append(ins.CategoryImbalance, ImbalancedColumn{Name: c.Name, Top: top.Value, Share: share})
		}
	}

	ins.SeasonalityCandidates = seasonality(profile, rows)

	if len(ins.HighMissingColumns) > 0 {
		ins.Recommendations = append(ins.Recommendations, RecommendImpute)
	}
	if len(ins.OutlierColumns) > 0 {
		ins.Recommendations = append(ins.Recommendations, RecommendRobustScale)
	}
	if len(ins.CategoryImbalance) > 0 {
		ins.Recommendations = append(ins.Recommendations, RecommendEncode)
	}
	if len(profile.NumericColumns) > NormalizeNumericColumns {
		ins.Recommendations = append(ins.Recommendations, RecommendNormalize)
	}
	if len(ins.StrongCorrelations) > 0 {
		ins.Recommendations = append(ins.Recommendations, RecommendDecorrelate)
	}
	return ins
}

// ChartSuggestions lists the visualizations worth drawing for the column mix
// of p, in a fixed order.
func ChartSuggestions(p DatasetProfile) []string {
	out := []string{}
	if len(p.NumericColumns) > 0 {
		out = append(out, SuggestDistributions)
	}
	if len(p.NumericColumns) >= 2 {
		out = append(out, SuggestRelationships)
	}
	if len(p.DatetimeColumns) > 0 {
		out = append(out, SuggestTimeSeries)
	}
	if len(p.CategoricalColumns) > 0 {
		out = append(out, SuggestProportions)
	}
	return out
}

// seasonality probes the daily mean trend of the first datetime column.
func seasonality(profile DatasetProfile, rows []Row) []SeasonalityCandidate {
	out := []SeasonalityCandidate{}
	if len(profile.DatetimeColumns) == 0 || len(profile.NumericColumns) == 0 {
		return out
	}
	trend := TemporalTrends(rows, profile.DatetimeColumns[0], profile.NumericColumns, AggregateMean)
	for _, c := range profile.NumericColumns {
		series := trend.Column(c)
		for _, lag := range SeasonalityLags {
			eff := lag
			if half := len(series) / 2; half < eff {
				eff = half
			}
			acf := Autocorrelation(series, eff)
			if acf > SeasonalityACFThreshold {
				out = append(out, SeasonalityCandidate{Column: c, Lag: lag, EffectiveLag: eff, ACF: acf})
			}
		}
	}
	return out
}
