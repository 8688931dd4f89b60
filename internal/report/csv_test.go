package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/core"
)

func TestToCSV(t *testing.T) {
	form, entries := teaCount()
	jan := FilterByPeriod(entries, 1, 2024)

	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, jan, form.Fields))

	want := "Date,Count,Category\n" +
		"2024-01-06,2,Food\n" +
		"2024-01-05,3,Food\n"
	assert.Equal(t, want, buf.String())
}

func TestToCSVQuotesAndMissingValues(t *testing.T) {
	entries := []core.Entry{
		entry(1, 2024, 5, 2, core.Payload{"title": "Tea, biscuits", "note": `said "hi"`}),
		entry(2, 2024, 5, 1, core.Payload{}),
	}
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, entries, []string{"date", "title", "note", "mood"}))

	want := "Date,Title,Note,mood\n" +
		"2024-05-02,\"Tea, biscuits\",\"said \"\"hi\"\"\",\n" +
		"2024-05-01,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToCSV(&buf, nil, []string{"date", "amount"}))
	assert.Equal(t, "Date,Amount\n", buf.String())
}
