package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-05", "2024-01-05", true},
		{" 2024-02-29 ", "2024-02-29", true},
		{"2024-01-05T23:30:00+05:30", "2024-01-05", true},
		{"2024-01-31T00:00:00.000Z", "2024-01-31", true},
		{"", "", false},
		{"05/01/2024", "", false},
		{"2024-13-01", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tc.in, err)
			}
			if d.String() != tc.want {
				t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, d, tc.want)
			}
			if d.Location() != time.UTC || d.Hour() != 0 {
				t.Fatalf("ParseDate(%q) not normalized to UTC midnight: %v", tc.in, d.Time)
			}
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseDate(%q) expected validation error, got %v", tc.in, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 9))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-09T10:00:00Z"`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.Equal(NewDate(2024, 3, 9).Time) {
		t.Fatalf("unexpected date %v", d)
	}
}

func TestDateInPeriod(t *testing.T) {
	d := NewDate(2024, 1, 31)
	if !d.InPeriod(1, 2024) {
		t.Fatal("expected Jan 2024")
	}
	if d.InPeriod(2, 2024) || d.InPeriod(1, 2023) {
		t.Fatal("unexpected period match")
	}
	if (Date{}).InPeriod(1, 1) {
		t.Fatal("zero date must not match")
	}
}

func TestNormalizeFieldKeys(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"count", "category"}, []string{"date", "count", "category"}},
		{[]string{"amount", "date", "note"}, []string{"amount", "date", "note"}},
		{[]string{" amount ", "amount", "", "title"}, []string{"date", "amount", "title"}},
		{nil, []string{"date"}},
	}
	for i, tc := range cases {
		got := NormalizeFieldKeys(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
		for j := range got {
			if got[j] != tc.want[j] {
				t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
			}
		}
	}
}

func TestNewForm(t *testing.T) {
	f, err := NewForm("  Tea Count ", []string{"count", "category"})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if f.Name != "Tea Count" || f.Fields[0] != FieldDate {
		t.Fatalf("unexpected form %+v", f)
	}

	_, err = NewForm("", []string{"count"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	_, err = NewForm("X", []string{" ", ""})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Errors[0].Field != "fieldKeys" {
		t.Fatalf("expected fieldKeys validation error, got %v", err)
	}
}
