package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smarttracker/internal/core"
)

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var entries []core.Entry
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(int64(i+1), 2024, 3, 15-i, core.Payload{"amount": 10.0}))
	}
	entries = append(entries, entry(100, 2024, 2, 28, core.Payload{"amount": 999.0}))

	d := BuildDashboard(4, entries, now)
	assert.Equal(t, 4, d.ActiveTrackers)
	assert.Equal(t, 13, d.TotalLogs)
	assert.Equal(t, Period{Month: 3, Year: 2024}, d.Period)
	assert.Equal(t, "120", d.MonthlySpend.String())
	assert.Len(t, d.Recent, RecentLimit)
	assert.Equal(t, int64(1), d.Recent[0].ID)
}
