package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2024, time.July, 31, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{name: "defaults", query: "", want: MonthParams{Year: 2024, Month: 7}},
		{name: "explicit", query: "month=2&year=2023", want: MonthParams{Year: 2023, Month: 2}},
		{name: "only year", query: "year=2020", want: MonthParams{Year: 2020, Month: 7}},
		{name: "spaces trimmed", query: "month=+3+", want: MonthParams{Year: 2024, Month: 3}},
		{name: "bad month", query: "month=july", wantErr: true},
		{name: "bad year", query: "year=20x4", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseMonthParams(q, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit(url.Values{}, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	n, err = parseLimit(url.Values{"limit": {"25"}}, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = parseLimit(url.Values{"limit": {"0"}}, 100)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/forms/42", nil)
	req.SetPathValue("id", "42")
	id, err := pathID(req, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, raw := range []string{"", "-1", "0", "1.5", "x"} {
		req.SetPathValue("id", raw)
		_, err := pathID(req, "id")
		assert.ErrorIs(t, err, core.ErrValidation, raw)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Tea","fields":["count"]}`))
		var body formRequest
		require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &body))
		assert.Equal(t, "Tea", body.Name)
		assert.Equal(t, []string{"count"}, body.keys())
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var body formRequest
		assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &body), core.ErrValidation)
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var body formRequest
		assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &body), core.ErrValidation)
	})

	t.Run("too large", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var body formRequest
		err := decodeJSON(httptest.NewRecorder(), req, &body)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}

func TestEntryRequestInput(t *testing.T) {
	in := entryRequest{Date: " 2024-01-02 ", Data: core.Payload{"count": 1.0}}.input()
	assert.Equal(t, "2024-01-02", in.Date)
	assert.Equal(t, core.Payload{"count": 1.0}, in.Payload)

	in = entryRequest{Payload: core.Payload{"a": "x"}, Data: core.Payload{"b": "y"}}.input()
	assert.Equal(t, core.Payload{"a": "x"}, in.Payload)
}

func TestFormRequestKeysPrefersFieldKeys(t *testing.T) {
	req := formRequest{FieldKeys: []string{"amount"}, Fields: []string{"count"}}
	assert.Equal(t, []string{"amount"}, req.keys())
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Tea Count", sanitizeInput("  Tea\x00 Count\x07 "))
	assert.Equal(t, "a\tb\nc", sanitizeInput("a\tb\nc"))
}
