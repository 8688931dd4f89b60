package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smarttracker/internal/core"
	"smarttracker/internal/services"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// formRequest is the body of form create and update. "fields" is accepted as
// an alias of "fieldKeys".
type formRequest struct {
	Name      string   `json:"name"`
	FieldKeys []string `json:"fieldKeys"`
	Fields    []string `json:"fields"`
}

func (f formRequest) keys() []string {
	if len(f.FieldKeys) > 0 {
		return f.FieldKeys
	}
	return f.Fields
}

// entryRequest is the body of entry create and update. "data" is accepted as
// an alias of "payload".
type entryRequest struct {
	Date    string       `json:"date"`
	Payload core.Payload `json:"payload"`
	Data    core.Payload `json:"data"`
}

func (e entryRequest) input() services.EntryInput {
	payload := e.Payload
	if payload == nil {
		payload = e.Data
	}
	return services.EntryInput{Date: sanitizeInput(e.Date), Payload: payload}
}

// decodeJSON reads a JSON object body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("body", "request body is empty")
		case errors.As(err, &maxErr):
			return core.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return core.NewValidationError("body", "invalid JSON: "+err.Error())
		}
	}
	return nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError(name, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

// MonthParams holds the report period from the query string.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads month (1-12) and year, defaulting each to now (UTC).
// Values that are present but not numbers are rejected.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	now = now.UTC()
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	verr := &core.ValidationError{}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		} else {
			verr.Add("year", fmt.Sprintf("invalid year %q", v))
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		} else {
			verr.Add("month", fmt.Sprintf("invalid month %q", v))
		}
	}
	return params, verr.ErrOrNil()
}

// parseLimit reads ?limit=, falling back to def when absent.
func parseLimit(query url.Values, def int) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, core.NewValidationError("limit", fmt.Sprintf("invalid limit %q", v))
	}
	return n, nil
}

// sanitizeInput trims and removes control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
