package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/core"
)

func entry(id int64, y, m, d int, p core.Payload) core.Entry {
	return core.Entry{ID: id, FormID: 1, Date: core.NewDate(y, m, d), Payload: p}
}

func teaCount() (core.Form, []core.Entry) {
	form := core.Form{ID: 1, Name: "Tea Count", Fields: []string{"date", "count", "category"}}
	entries := []core.Entry{
		entry(3, 2024, 2, 1, core.Payload{"count": 1.0, "category": "Food"}),
		entry(2, 2024, 1, 6, core.Payload{"count": 2.0, "category": "Food"}),
		entry(1, 2024, 1, 5, core.Payload{"count": 3.0, "category": "Food"}),
	}
	return form, entries
}

func TestTeaCountScenario(t *testing.T) {
	form, entries := teaCount()

	jan := FilterByPeriod(entries, 1, 2024)
	require.Len(t, jan, 2)
	assert.True(t, SumNumericField(jan, "count").Equal(decimal.NewFromInt(5)))

	breakdown := MonthlyBreakdown(entries, 2024, "count")
	assert.Equal(t, "Jan", breakdown[0].Month)
	assert.True(t, breakdown[0].Value.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 2, breakdown[0].EntryCount)
	assert.Equal(t, 1, breakdown[1].EntryCount)

	r := BuildMonthlyReport(form, entries, Period{Month: 1, Year: 2024})
	assert.Equal(t, 2, r.EntryCount())
	assert.Equal(t, "count", r.NumericField)
	require.Len(t, r.Totals, 1)
	assert.Equal(t, "Count", r.Totals[0].Label)
	assert.True(t, r.Totals[0].Total.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, int64(2), r.Entries[0].ID)
}

func TestSumNumericField(t *testing.T) {
	assert.True(t, SumNumericField(nil, "amount").IsZero())

	entries := []core.Entry{
		entry(1, 2024, 1, 1, core.Payload{"amount": 0.1}),
		entry(2, 2024, 1, 2, core.Payload{"amount": 0.2}),
		entry(3, 2024, 1, 3, core.Payload{"amount": "abc"}),
		entry(4, 2024, 1, 4, core.Payload{"note": "no amount"}),
		entry(5, 2024, 1, 5, core.Payload{"amount": "1.5"}),
	}
	assert.Equal(t, "1.8", SumNumericField(entries, "amount").String())
}

func TestMonthlyBreakdownShape(t *testing.T) {
	entries := []core.Entry{
		entry(1, 2024, 3, 1, core.Payload{}),
		entry(2, 2024, 3, 9, core.Payload{}),
		entry(3, 2024, 12, 31, core.Payload{}),
		entry(4, 2023, 12, 31, core.Payload{}),
	}
	b := MonthlyBreakdown(entries, 2024, "")
	require.Len(t, b, 12)

	total := 0
	for i, m := range b {
		assert.Equal(t, MonthNames[i], m.Month)
		assert.False(t, m.Value.IsNegative())
		total += m.EntryCount
	}
	assert.Equal(t, 3, total)
	assert.True(t, b[2].Value.Equal(decimal.NewFromInt(2)))
	assert.True(t, b[11].Value.Equal(decimal.NewFromInt(1)))
}

func TestBarHeights(t *testing.T) {
	var b [12]MonthValue
	for i := range b {
		b[i] = MonthValue{Month: MonthNames[i], Value: decimal.Zero}
	}
	b[0] = MonthValue{Month: "Jan", Value: decimal.NewFromInt(200), EntryCount: 4}
	b[1] = MonthValue{Month: "Feb", Value: decimal.NewFromInt(100), EntryCount: 1}
	b[2] = MonthValue{Month: "Mar", Value: decimal.NewFromInt(2), EntryCount: 1}
	b[3] = MonthValue{Month: "Apr", Value: decimal.Zero, EntryCount: 3}

	h := BarHeights(b)
	assert.Equal(t, 100.0, h[0])
	assert.Equal(t, 50.0, h[1])
	assert.Equal(t, MinBarHeight, h[2])
	assert.Equal(t, 0.0, h[3], "entries summing to zero draw no bar")
	assert.Equal(t, 0.0, h[4])
}

func TestBarHeightsFlooredMax(t *testing.T) {
	var b [12]MonthValue
	b[5] = MonthValue{Month: "Jun", Value: decimal.RequireFromString("0.5"), EntryCount: 1}
	h := BarHeights(b)
	assert.Equal(t, 50.0, h[5])
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(1, 2024)
	require.NoError(t, err)
	assert.Equal(t, "Jan 2024", p.Label())

	_, err = NewPeriod(0, 2024)
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = NewPeriod(13, 2024)
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = NewPeriod(12, 0)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestTotalsFollowFormOrder(t *testing.T) {
	entries := []core.Entry{entry(1, 2024, 1, 1, core.Payload{"amount": 10.0, "count": 2.0})}
	totals := Totals(entries, []string{"date", "count", "title", "amount"})
	require.Len(t, totals, 2)
	assert.Equal(t, "count", totals[0].Key)
	assert.Equal(t, "amount", totals[1].Key)

	assert.Empty(t, Totals(entries, []string{"date", "note"}))
	_, ok := NumericField([]string{"date", "note"})
	assert.False(t, ok)
}

func TestFileName(t *testing.T) {
	form, entries := teaCount()
	r := BuildMonthlyReport(form, entries, Period{Month: 1, Year: 2024})
	assert.Equal(t, "Tea Count_Jan_2024.csv", FileName(r, ".csv"))

	r.Form.Name = "../../etc/passwd"
	assert.Equal(t, "....etcpasswd_Jan_2024.pdf", FileName(r, ".pdf"))
}
