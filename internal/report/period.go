// Package report aggregates form entries into totals, monthly breakdowns and
// exportable documents. Everything here is pure: callers load the data.
package report

import (
	"fmt"
	"time"

	"smarttracker/internal/core"
)

// MonthNames are the short month labels used in breakdowns and file names.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Period is a calendar month. Month is 1-12.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewPeriod validates month and year.
func NewPeriod(month, year int) (Period, error) {
	verr := &core.ValidationError{}
	if month < 1 || month > 12 {
		verr.Add("month", fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 1 || year > 9999 {
		verr.Add("year", fmt.Sprintf("year must be between 1 and 9999, got %d", year))
	}
	if err := verr.ErrOrNil(); err != nil {
		return Period{}, err
	}
	return Period{Month: month, Year: year}, nil
}

// CurrentPeriod returns the month containing now, in UTC.
func CurrentPeriod(now time.Time) Period {
	now = now.UTC()
	return Period{Month: int(now.Month()), Year: now.Year()}
}

// Label renders the period as "Jan 2024".
func (p Period) Label() string {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Sprintf("%d/%d", p.Month, p.Year)
	}
	return fmt.Sprintf("%s %d", MonthNames[p.Month-1], p.Year)
}

// FilterByPeriod keeps the entries dated inside month/year, preserving order.
func FilterByPeriod(entries []core.Entry, month, year int) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date.InPeriod(month, year) {
			out = append(out, e)
		}
	}
	return out
}
