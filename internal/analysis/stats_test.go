package analysis

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	if got := Quantile(sorted, 0.5); !approx(got, 5.5) {
		t.Fatalf("median = %v", got)
	}
	if got := Quantile(sorted, 0.25); !approx(got, 3.25) {
		t.Fatalf("q1 = %v", got)
	}
	if got := Quantile(sorted, 0.75); !approx(got, 7.75) {
		t.Fatalf("q3 = %v", got)
	}
	if got := Quantile([]float64{42}, 0.3); got != 42 {
		t.Fatalf("single element = %v", got)
	}
	if got := Quantile(nil, 0.5); got != 0 {
		t.Fatalf("empty = %v", got)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !approx(mean, 5) {
		t.Fatalf("mean = %v", mean)
	}
	// sample std with n-1
	if !approx(std, math.Sqrt(32.0/7.0)) {
		t.Fatalf("std = %v", std)
	}
	if m, s := MeanStd([]float64{3}); m != 3 || s != 0 {
		t.Fatalf("single = %v %v", m, s)
	}
	if m, s := MeanStd(nil); m != 0 || s != 0 {
		t.Fatalf("empty = %v %v", m, s)
	}
}

func TestSkewness(t *testing.T) {
	if got := Skewness([]float64{1, 2}); got != 0 {
		t.Fatalf("n<3 = %v", got)
	}
	if got := Skewness([]float64{1, 2, 3}); !approx(got, 0) {
		t.Fatalf("symmetric = %v", got)
	}
	if got := Skewness([]float64{5, 5, 5, 5}); got != 0 {
		t.Fatalf("constant = %v", got)
	}
	if got := Skewness([]float64{1, 2, 2, 3, 30}); got <= 0 {
		t.Fatalf("right tail should skew positive, got %v", got)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	if got := Pearson(x, []float64{2, 4, 6, 8, 10}); !approx(got, 1) {
		t.Fatalf("linear = %v", got)
	}
	if got := Pearson(x, []float64{5, 4, 3, 2, 1}); !approx(got, -1) {
		t.Fatalf("inverse = %v", got)
	}
	if got := Pearson(x, []float64{7, 7, 7, 7, 7}); got != 0 {
		t.Fatalf("constant = %v", got)
	}
	if got := Pearson(nil, x); got != 0 {
		t.Fatalf("empty = %v", got)
	}
	// truncated to the shorter prefix
	if got := Pearson(x, []float64{10, 20, 30}); !approx(got, 1) {
		t.Fatalf("prefix = %v", got)
	}
}

func TestAutocorrelation(t *testing.T) {
	series := []float64{1, 5, 1, 5, 1, 5, 1, 5}
	if got := Autocorrelation(series, 2); !approx(got, 1) {
		t.Fatalf("period 2 at lag 2 = %v", got)
	}
	if got := Autocorrelation(series, 1); !approx(got, -1) {
		t.Fatalf("period 2 at lag 1 = %v", got)
	}
	if Autocorrelation(series, 0) != 0 || Autocorrelation(series, 8) != 0 {
		t.Fatalf("out of range lags must be 0")
	}
}

func TestMeanStdNearMaxFloat(t *testing.T) {
	vals := []float64{1.5e308, 1.6e308, 1.7e308}
	mean, std := MeanStd(vals)
	if math.IsInf(mean, 0) || math.IsNaN(std) || math.IsInf(std, 0) {
		t.Fatalf("non-finite result: mean=%v std=%v", mean, std)
	}
	if math.Abs(mean-1.6e308)/1.6e308 > 1e-12 {
		t.Fatalf("mean = %v", mean)
	}
	if math.Abs(std-1e307)/1e307 > 1e-9 {
		t.Fatalf("std = %v", std)
	}
	if sk := Skewness(vals); math.IsNaN(sk) || math.Abs(sk) > 1e-6 {
		t.Fatalf("skewness = %v", sk)
	}
	// A span wider than MaxFloat64 saturates instead of overflowing.
	if _, std := MeanStd([]float64{-1.7e308, 1.7e308}); std != math.MaxFloat64 {
		t.Fatalf("saturated std = %v", std)
	}
}
