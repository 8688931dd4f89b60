package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsCodecPreservesOrder(t *testing.T) {
	raw, err := EncodeFields([]string{"date", "count", "category"})
	require.NoError(t, err)
	assert.Equal(t, `["date","count","category"]`, raw)

	keys, err := DecodeFields(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "count", "category"}, keys)

	keys, err = DecodeFields("")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = DecodeFields("not json")
	assert.Error(t, err)
}

func TestPayloadRoundTrip(t *testing.T) {
	in := Payload{"count": 3.0, "category": "Food", "note": "Morning tea"}
	raw, err := EncodePayload(in)
	require.NoError(t, err)

	out, err := DecodePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	raw, err = EncodePayload(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", raw)

	out, err = DecodePayload("null")
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{3.0, "3", true},
		{0.1, "0.1", true},
		{int64(7), "7", true},
		{json.Number("12.50"), "12.5", true},
		{"42.25", "42.25", true},
		{" ", "0", false},
		{"abc", "0", false},
		{true, "0", false},
		{nil, "0", false},
	}
	for _, tc := range cases {
		d, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if ok {
			assert.True(t, d.Equal(decimal.RequireFromString(tc.want)), "input %v got %s", tc.in, d)
		}
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "3", FormatValue(3.0))
	assert.Equal(t, "12.5", FormatValue(12.5))
	assert.Equal(t, "Food", FormatValue("Food"))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, `["a"]`, FormatValue([]any{"a"}))
}

func TestEntryDisplay(t *testing.T) {
	e := Entry{Date: NewDate(2024, 1, 5), Payload: Payload{"count": 2.0}}
	assert.Equal(t, "2024-01-05", e.Display("date"))
	assert.Equal(t, "2", e.Display("count"))
	assert.Equal(t, "", e.Display("category"))

	e.Payload["date"] = "2024-01-06"
	assert.Equal(t, "2024-01-05", e.Display("date"))
}
