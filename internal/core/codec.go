package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// EncodeFields encodes an ordered field list as a JSON array.
func EncodeFields(keys []string) (string, error) {
	if keys == nil {
		keys = []string{}
	}
	b, err := json.Marshal(keys)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(b), nil
}

// DecodeFields decodes a stored field list. An empty blob is an empty list.
func DecodeFields(raw string) ([]string, error) {
	keys := []string{}
	if strings.TrimSpace(raw) == "" {
		return keys, nil
	}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return keys, nil
}

// EncodePayload encodes an entry payload as a JSON object.
func EncodePayload(p Payload) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(b), nil
}

// DecodePayload decodes a stored payload. Numbers come back as float64.
func DecodePayload(raw string) (Payload, error) {
	p := Payload{}
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p == nil {
		p = Payload{}
	}
	return p, nil
}

// Number returns the numeric value stored under key. Missing or non-numeric
// values report false.
func (p Payload) Number(key string) (decimal.Decimal, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	return ParseNumber(v)
}

// ParseNumber converts a payload value to a decimal.
func ParseNumber(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// FormatValue renders a payload value for tabular output. Missing values are
// empty; numbers use the shortest representation.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case decimal.Decimal:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

// Display returns the tabular text of a field of the entry. The date field
// always shows the entry date.
func (e Entry) Display(key string) string {
	if key == FieldDate {
		return e.Date.String()
	}
	return FormatValue(e.Payload[key])
}
