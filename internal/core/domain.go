package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout of entry dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date stored as UTC midnight.
	Date struct {
		time.Time
	}

	// Payload holds the dynamic values of an entry keyed by field key.
	Payload map[string]any

	// Form is a user-defined schema: a name plus an ordered list of field keys.
	Form struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Fields    []string  `json:"fields"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Entry is one dated record logged against a form.
	Entry struct {
		ID       int64   `json:"id"`
		FormID   int64   `json:"formId"`
		Date     Date    `json:"date"`
		Payload  Payload `json:"payload"`
		FormName string  `json:"formName,omitempty"`
	}
)

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" or an RFC 3339 timestamp. For timestamps the
// calendar date as written is kept; time of day and offset are dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, NewValidationError("date", "date is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, NewValidationError("date", "invalid date "+strconv.Quote(s)+", expected YYYY-MM-DD")
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InPeriod reports whether the date falls in the given month (1-12) and year.
func (d Date) InPeriod(month, year int) bool {
	return !d.IsZero() && d.Month() == month && d.Year() == year
}

// NormalizeFieldKeys trims keys, drops blanks and duplicates, and makes sure
// "date" is present. When "date" has to be added it goes first.
func NormalizeFieldKeys(keys []string) []string {
	out := make([]string, 0, len(keys)+1)
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if _, ok := seen[FieldDate]; !ok {
		out = append([]string{FieldDate}, out...)
	}
	return out
}

// NewForm validates a form definition and normalizes its field keys.
func NewForm(name string, fieldKeys []string) (Form, error) {
	verr := &ValidationError{}
	name = strings.TrimSpace(name)
	if name == "" {
		verr.Add("name", "name is required")
	}
	nonBlank := 0
	for _, k := range fieldKeys {
		if strings.TrimSpace(k) != "" {
			nonBlank++
		}
	}
	if nonBlank == 0 {
		verr.Add("fieldKeys", "at least one field is required")
	}
	if err := verr.ErrOrNil(); err != nil {
		return Form{}, err
	}
	return Form{Name: name, Fields: NormalizeFieldKeys(fieldKeys)}, nil
}
