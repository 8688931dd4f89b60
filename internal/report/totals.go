package report

import (
	"github.com/shopspring/decimal"

	"smarttracker/internal/core"
)

// FieldTotal is the sum of one numeric field.
type FieldTotal struct {
	Key   string
	Label string
	Total decimal.Decimal
}

// SumNumericField sums the numeric values stored under key. Missing or
// unparsable values count as zero.
func SumNumericField(entries []core.Entry, key string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		if v, ok := e.Payload.Number(key); ok {
			sum = sum.Add(v)
		}
	}
	return sum
}

// NumericFields returns the numeric keys of a form in form order.
func NumericFields(fieldKeys []string) []string {
	var keys []string
	for _, k := range fieldKeys {
		if core.IsNumeric(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// NumericField returns the first numeric field of a form.
func NumericField(fieldKeys []string) (string, bool) {
	keys := NumericFields(fieldKeys)
	if len(keys) == 0 {
		return "", false
	}
	return keys[0], true
}

// Totals computes one total per numeric field of the form.
func Totals(entries []core.Entry, fieldKeys []string) []FieldTotal {
	keys := NumericFields(fieldKeys)
	totals := make([]FieldTotal, 0, len(keys))
	for _, k := range keys {
		totals = append(totals, FieldTotal{
			Key:   k,
			Label: core.Describe(k).Label,
			Total: SumNumericField(entries, k),
		})
	}
	return totals
}
