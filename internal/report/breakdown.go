package report

import (
	"github.com/shopspring/decimal"

	"smarttracker/internal/core"
)

// MinBarHeight is the smallest visible bar, in percent.
const MinBarHeight = 8.0

// MonthValue is one month of a yearly breakdown.
type MonthValue struct {
	Month      string
	Value      decimal.Decimal
	EntryCount int
}

// MonthlyBreakdown buckets the entries of year into 12 months. Value is the
// sum of key when key is set, else the number of entries.
func MonthlyBreakdown(entries []core.Entry, year int, key string) [12]MonthValue {
	var out [12]MonthValue
	for i := range out {
		out[i] = MonthValue{Month: MonthNames[i], Value: decimal.Zero}
	}
	for _, e := range entries {
		if e.Date.IsZero() || e.Date.Year() != year {
			continue
		}
		m := &out[e.Date.Month()-1]
		m.EntryCount++
		if key == "" {
			m.Value = m.Value.Add(decimal.NewFromInt(1))
			continue
		}
		if v, ok := e.Payload.Number(key); ok {
			m.Value = m.Value.Add(v)
		}
	}
	return out
}

// BarHeights converts a breakdown into percentage bar heights. The maximum is
// floored at 1 so an all-zero year renders flat. Months with a positive value
// get at least MinBarHeight; every other month gets 0, even with entries.
func BarHeights(breakdown [12]MonthValue) [12]float64 {
	maxValue := decimal.NewFromInt(1)
	for _, m := range breakdown {
		if m.Value.GreaterThan(maxValue) {
			maxValue = m.Value
		}
	}
	hundred := decimal.NewFromInt(100)

	var heights [12]float64
	for i, m := range breakdown {
		if !m.Value.IsPositive() {
			continue
		}
		pct, _ := m.Value.Mul(hundred).Div(maxValue).Float64()
		heights[i] = max(pct, MinBarHeight)
	}
	return heights
}
