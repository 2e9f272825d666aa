package workbook

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/KaramelBytes/insightforge-cli/internal/analysis"
)

// SampleKinds lists the demo datasets Sample can produce.
var SampleKinds = []string{"sales", "finance", "survey", "ops"}

// DefaultSampleDays is the length of a generated series.
const DefaultSampleDays = 120

var sampleColumns = []string{"Date", "Region", "Product", "Units", "Price", "Revenue", "Expense", "KPI", "Rating"}

// SampleOptions controls demo dataset generation. A zero End means now.
type SampleOptions struct {
	Kind string
	Days int
	Seed uint64
	End  time.Time
}

// Sample builds a one-sheet demo workbook of daily sales-style rows. The
// same seed and end date always produce the same rows.
func Sample(opts SampleOptions) (*Workbook, error) {
	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	if kind == "" {
		kind = "sales"
	}
	if !validKind(kind) {
		return nil, fmt.Errorf("unknown sample kind %q (use %s)", opts.Kind, strings.Join(SampleKinds, ", "))
	}
	days := opts.Days
	if days <= 0 {
		days = DefaultSampleDays
	}
	end := opts.End
	if end.IsZero() {
		end = time.Now()
	}
	end = end.UTC()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	regions := []string{"North", "South", "East", "West"}
	products := []string{"A", "B", "C", "D"}
	prices := []float64{29, 49, 79, 99}

	rows := make([]analysis.Row, days)
	for i := range rows {
		day := end.AddDate(0, 0, -(days - i))
		units := float64(rng.IntN(90) + 10)
		price := prices[rng.IntN(len(prices))]
		revenue := units * price * (0.8 + rng.Float64()*0.4)
		expense := revenue * (0.4 + rng.Float64()*0.2)
		rows[i] = analysis.NewRow(sampleColumns, []analysis.Value{
			analysis.String(day.Format("2006-01-02")),
			analysis.String(regions[rng.IntN(len(regions))]),
			analysis.String(products[rng.IntN(len(products))]),
			analysis.Number(units),
			analysis.Number(price),
			analysis.Number(round2(revenue)),
			analysis.Number(round2(expense)),
			analysis.Number(round2(rng.Float64() * 100)),
			analysis.Number(float64(rng.IntN(5) + 1)),
		})
	}
	sheet := Sheet{Name: "Sheet1", Columns: sampleColumns, Rows: rows}
	return New("sample-"+kind+".xlsx", int64(days*100), []Sheet{sheet}), nil
}

func validKind(kind string) bool {
	for _, k := range SampleKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
