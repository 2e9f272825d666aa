package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Predicate decides whether a cell keeps its row.
type Predicate func(Value) bool

// Filters maps column names to predicates. A nil predicate leaves its column
// unfiltered.
type Filters map[string]Predicate

// DateRange keeps cells that coerce to an instant within [from, to]. A zero
// bound is open. Cells that do not coerce are dropped.
func DateRange(from, to time.Time) Predicate {
	return func(v Value) bool {
		t, ok := ToTime(v)
		if !ok {
			return false
		}
		if !from.IsZero() && t.Before(from) {
			return false
		}
		if !to.IsZero() && t.After(to) {
			return false
		}
		return true
	}
}

// OneOf keeps cells whose rendered form equals one of values.
func OneOf(values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, s := range values {
		set[s] = struct{}{}
	}
	return func(v Value) bool {
		_, ok := set[v.String()]
		return ok
	}
}

// Equals keeps cells whose rendered form equals want's.
func Equals(want Value) Predicate {
	w := want.String()
	return func(v Value) bool { return v.String() == w }
}

// FilterRows returns the rows accepted by every predicate, in input order.
// The input slice is never modified.
func FilterRows(rows []Row, filters Filters) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keep(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func keep(r Row, filters Filters) bool {
	for col, pred := range filters {
		if pred == nil {
			continue
		}
		if !pred(r.Get(col)) {
			return false
		}
	}
	return true
}

// FiltersState is the dashboard's filter selection. Dates are ISO strings
// (yyyy-mm-dd) and both bounds are inclusive.
type FiltersState struct {
	DateColumn         string   `json:"date_column,omitempty" yaml:"date_column,omitempty"`
	DateFrom           string   `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo             string   `json:"date_to,omitempty" yaml:"date_to,omitempty"`
	CategoryColumn     string   `json:"category_column,omitempty" yaml:"category_column,omitempty"`
	SelectedCategories []string `json:"selected_categories,omitempty" yaml:"selected_categories,omitempty"`
}

// IsZero reports whether the state filters nothing.
func (f FiltersState) IsZero() bool {
	return len(f.Filters()) == 0
}

// Filters translates the selection into predicates. A date bound that does
// not parse is treated as unset; a date column with no usable bound adds no
// predicate.
func (f FiltersState) Filters() Filters {
	out := Filters{}
	if f.DateColumn != "" {
		from, fromOK := parseDate(f.DateFrom)
		to, toOK := parseDate(f.DateTo)
		if fromOK || toOK {
			out[f.DateColumn] = DateRange(from, to)
		}
	}
	if f.CategoryColumn != "" && len(f.SelectedCategories) > 0 {
		member := OneOf(f.SelectedCategories...)
		if prev, ok := out[f.CategoryColumn]; ok {
			out[f.CategoryColumn] = func(v Value) bool { return prev(v) && member(v) }
		} else {
			out[f.CategoryColumn] = member
		}
	}
	return out
}

// Validate reports malformed date bounds that Filters would silently ignore.
func (f FiltersState) Validate() error {
	for _, b := range []struct{ name, val string }{{"date_from", f.DateFrom}, {"date_to", f.DateTo}} {
		if strings.TrimSpace(b.val) == "" {
			continue
		}
		if _, ok := parseDate(b.val); !ok {
			return fmt.Errorf("invalid %s: %q", b.name, b.val)
		}
	}
	return nil
}

// ApplyFilters narrows rows to the selection. An empty selection returns the
// rows unchanged.
func ApplyFilters(rows []Row, f FiltersState) []Row {
	filters := f.Filters()
	if len(filters) == 0 {
		return rows
	}
	return FilterRows(rows, filters)
}

// ChartOptions carries presentation hints. Bins sizes histograms and
// Aggregation folds daily trend points.
type ChartOptions struct {
	Palette     string      `json:"palette" yaml:"palette"`
	Bins        int         `json:"bins" yaml:"bins"`
	Aggregation Aggregation `json:"aggregation" yaml:"aggregation"`
}

// DefaultChartOptions mirrors the dashboard's initial controls.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Palette: "indigo", Bins: DefaultBins, Aggregation: AggregateMean}
}
