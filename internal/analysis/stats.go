package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Quantile interpolates linearly between the ranks around (n-1)*q of an
// ascending slice. Empty input yields 0.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// quartiles sorts a copy of values and returns q1, median and q3.
func quartiles(values []float64) (q1, q2, q3 float64) {
	cp := make([]float64, len(values))
	copy(cp, values)
	sort.Float64s(cp)
	return Quantile(cp, 0.25), Quantile(cp, 0.5), Quantile(cp, 0.75)
}

// MeanStd returns the arithmetic mean and the Bessel-corrected standard
// deviation. A single value has std 0; no values give 0, 0. Inputs large
// enough to overflow are rescaled by their largest magnitude first.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) == 1 {
		return saturate(values[0]), 0
	}
	mean = stat.Mean(values, nil)
	std = math.Sqrt(stat.Variance(values, nil))
	if isFinite(mean) && isFinite(std) {
		return mean, std
	}
	scaled, s := rescale(values)
	if s == 0 {
		return 0, 0
	}
	mean = stat.Mean(scaled, nil) * s
	std = math.Sqrt(stat.Variance(scaled, nil)) * s
	return saturate(mean), saturate(std)
}

// Skewness is the population third central moment over std³, with std read
// as 1 when it is zero. Fewer than three values give 0.
func Skewness(values []float64) float64 {
	if len(values) < 3 {
		return 0
	}
	if sk := skewness(values); isFinite(sk) {
		return sk
	}
	// Skewness is scale invariant, so overflowing input can be shrunk.
	scaled, s := rescale(values)
	if s == 0 {
		return 0
	}
	if sk := skewness(scaled); isFinite(sk) {
		return sk
	}
	return 0
}

func skewness(values []float64) float64 {
	std := math.Sqrt(stat.Variance(values, nil))
	if std == 0 {
		std = 1
	}
	return stat.Moment(3, values, nil) / (std * std * std)
}

// rescale divides values by their largest magnitude and returns the factor.
func rescale(values []float64) ([]float64, float64) {
	s := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > s {
			s = a
		}
	}
	if s == 0 || !isFinite(s) {
		return nil, 0
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / s
	}
	return out, s
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// saturate maps ±Inf to ±MaxFloat64 and NaN to 0.
func saturate(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// Pearson correlates the common prefix of x and y. Empty or constant input
// yields 0 and the result is clamped to [-1, 1].
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}
	r := stat.Correlation(x[:n], y[:n], nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return clamp(r, -1, 1)
}

// Autocorrelation is the Pearson correlation of series with itself shifted
// by lag. It is 0 when lag is not inside (0, len(series)).
func Autocorrelation(series []float64, lag int) float64 {
	if lag <= 0 || lag >= len(series) {
		return 0
	}
	return Pearson(series[:len(series)-lag], series[lag:])
}

// minMax returns 0, 0 for empty input instead of infinities.
func minMax(values []float64) (lo, hi float64) {
	data := stats.Float64Data(values)
	lo, err := data.Min()
	if err != nil {
		return 0, 0
	}
	hi, err = data.Max()
	if err != nil {
		return 0, 0
	}
	return lo, hi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
