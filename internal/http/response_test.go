package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusAccepted).Header("X-Test", "1").Body(map[string]int{"n": 1}).Write(rec)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestWriteErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", core.NewValidationError("name", "name is required"), http.StatusBadRequest, ""},
		{"not found", fmt.Errorf("get form: %w", core.NotFound("form", 7)), http.StatusNotFound, ""},
		{"storage", fmt.Errorf("query: %w", core.ErrStorage), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			writeError(rec, req, "test", "op", tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			} else {
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestWriteErrorIncludesFieldErrors(t *testing.T) {
	verr := core.NewValidationError("name", "name is required")
	verr.Add("fieldKeys", "at least one field is required")

	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/forms", nil), "form", "create", verr)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "fieldKeys", body.Errors[1].Field)
}

func TestTooManyRequestsError(t *testing.T) {
	rec := httptest.NewRecorder()
	TooManyRequestsError().Write(rec)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
