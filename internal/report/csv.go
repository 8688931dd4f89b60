package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"smarttracker/internal/core"
)

// ToCSV writes one header row of field labels followed by one row per entry.
// Values are written raw; missing values are empty.
func ToCSV(w io.Writer, entries []core.Entry, fieldKeys []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(core.Labels(fieldKeys)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(fieldKeys))
	for _, e := range entries {
		for i, k := range fieldKeys {
			row[i] = e.Display(k)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for entry %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
