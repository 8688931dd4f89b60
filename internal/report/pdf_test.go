package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/core"
)

func TestToReportDocument(t *testing.T) {
	form, entries := teaCount()
	r := BuildMonthlyReport(form, entries, Period{Month: 1, Year: 2024})

	var buf bytes.Buffer
	err := ToReportDocument(&buf, r, DocumentOptions{GeneratedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestToReportDocumentEmptyPeriod(t *testing.T) {
	form, entries := teaCount()
	r := BuildMonthlyReport(form, entries, Period{Month: 7, Year: 2024})
	require.Zero(t, r.EntryCount())

	var buf bytes.Buffer
	require.NoError(t, ToReportDocument(&buf, r, DocumentOptions{Currency: "EUR"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestToReportDocumentManyPages(t *testing.T) {
	form := core.Form{ID: 9, Name: "Spending – Café", Fields: []string{"date", "amount", "title", "category", "note"}}
	var entries []core.Entry
	for i := 0; i < 120; i++ {
		entries = append(entries, entry(int64(i+1), 2024, 3, 1+i%28, core.Payload{
			"amount":   float64(i) + 0.5,
			"title":    fmt.Sprintf("A rather long title for entry number %d that needs trimming", i),
			"category": core.Categories[i%len(core.Categories)],
		}))
	}
	r := BuildMonthlyReport(form, entries, Period{Month: 3, Year: 2024})

	var small, large bytes.Buffer
	require.NoError(t, ToReportDocument(&large, r, DocumentOptions{}))
	r.Entries = r.Entries[:1]
	require.NoError(t, ToReportDocument(&small, r, DocumentOptions{}))
	assert.Greater(t, large.Len(), small.Len())
}

func TestFormatTotal(t *testing.T) {
	r := BuildMonthlyReport(
		core.Form{Fields: []string{"date", "amount", "count"}},
		[]core.Entry{entry(1, 2024, 1, 1, core.Payload{"amount": 12.5, "count": 3.0})},
		Period{Month: 1, Year: 2024},
	)
	require.Len(t, r.Totals, 2)
	assert.Equal(t, "INR 12.50", formatTotal(r.Totals[0], DefaultCurrency))
	assert.Equal(t, "3", formatTotal(r.Totals[1], DefaultCurrency))
}
