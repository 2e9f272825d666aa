// Package analysis profiles tabular data and derives exploratory insights.
//
// Rows come in as ordered records of loosely typed cells (Value). ProfileData
// resolves each column to a semantic type from a bounded sample and computes
// descriptive statistics; DeriveInsights turns a profile into correlation,
// missingness, outlier, imbalance and seasonality diagnostics. The filter and
// aggregation helpers shape filtered rows for presentation.
//
// Everything in this package is a pure function of its inputs. Only ToNumber
// and ToTime coerce cells, so every statistic reads values the same way.
package analysis
