package report

import (
	"time"

	"github.com/shopspring/decimal"

	"smarttracker/internal/core"
)

// RecentLimit is how many entries the dashboard lists.
const RecentLimit = 10

// Dashboard summarizes activity across all forms.
type Dashboard struct {
	ActiveTrackers int
	TotalLogs      int
	Period         Period
	MonthlySpend   decimal.Decimal
	Recent         []core.Entry
}

// BuildDashboard aggregates the latest entries of all forms. entries are in
// listing order (newest first); MonthlySpend sums "amount" over the entries of
// the month containing now.
func BuildDashboard(formCount int, entries []core.Entry, now time.Time) Dashboard {
	period := CurrentPeriod(now)
	current := FilterByPeriod(entries, period.Month, period.Year)
	recent := entries
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return Dashboard{
		ActiveTrackers: formCount,
		TotalLogs:      len(entries),
		Period:         period,
		MonthlySpend:   SumNumericField(current, core.FieldAmount),
		Recent:         append([]core.Entry(nil), recent...),
	}
}
