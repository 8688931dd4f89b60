package report

import (
	"fmt"
	"regexp"
	"strings"

	"smarttracker/internal/core"
)

// MonthlyReport is the aggregated view of one form for one month.
type MonthlyReport struct {
	Form         core.Form
	Period       Period
	Entries      []core.Entry
	Totals       []FieldTotal
	NumericField string
	Breakdown    [12]MonthValue
	BarHeights   [12]float64
}

// EntryCount is the number of entries in the period.
func (r MonthlyReport) EntryCount() int {
	return len(r.Entries)
}

// BuildMonthlyReport filters entries to the period and aggregates them. The
// breakdown covers the whole year of the period. entries must all belong to
// form and be in listing order.
func BuildMonthlyReport(form core.Form, entries []core.Entry, period Period) MonthlyReport {
	filtered := FilterByPeriod(entries, period.Month, period.Year)
	key, _ := NumericField(form.Fields)
	breakdown := MonthlyBreakdown(entries, period.Year, key)
	return MonthlyReport{
		Form:         form,
		Period:       period,
		Entries:      filtered,
		Totals:       Totals(filtered, form.Fields),
		NumericField: key,
		Breakdown:    breakdown,
		BarHeights:   BarHeights(breakdown),
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9 _.-]+`)

// FileName returns "<form>_<Mon>_<year><suffix>", e.g. "Tea Count_Jan_2024.csv".
func FileName(r MonthlyReport, suffix string) string {
	name := strings.TrimSpace(unsafeFileChars.ReplaceAllString(r.Form.Name, ""))
	if name == "" {
		name = fmt.Sprintf("form-%d", r.Form.ID)
	}
	month := fmt.Sprintf("%02d", r.Period.Month)
	if r.Period.Month >= 1 && r.Period.Month <= 12 {
		month = MonthNames[r.Period.Month-1]
	}
	return fmt.Sprintf("%s_%s_%d%s", name, month, r.Period.Year, suffix)
}
