// Package http exposes the tracker over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"smarttracker/internal/core"
	"smarttracker/internal/log"
	"smarttracker/internal/middleware/trace"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.payload != nil {
		_ = json.NewEncoder(w).Encode(b.payload)
	}
}

type messageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Errors  []fieldErrorBody `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: message})
}

// ErrorResponse creates the uniform error body.
func ErrorResponse(status int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(status).Body(errorBody{Message: message})
}

// writeError maps err to a status code. Not found is checked before storage
// so a missing row is never reported as a server fault, and storage before
// validation so corrupt stored data is not blamed on the client.
func writeError(w http.ResponseWriter, r *http.Request, component, operation string, err error) {
	status, errorType := classify(err)
	fields := log.NewFields().
		WithRequestID(trace.GetRequestID(r.Context())).
		WithHTTPRequest(r.Method, r.URL.Path).
		WithErrorType(errorType)

	body := errorBody{Message: err.Error()}
	switch status {
	case http.StatusInternalServerError:
		log.LogError(r.Context(), "Request failed", err, component, operation, fields)
		body.Message = "Internal server error"
	case http.StatusBadRequest:
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				body.Errors = append(body.Errors, fieldErrorBody{Field: fe.Field, Message: fe.Message})
			}
		}
		log.FromContext(r.Context()).WarnContext(r.Context(), "Request rejected", append(fields.WithError(err).ToSlice(), log.FieldOperation, operation)...)
	default:
		log.FromContext(r.Context()).InfoContext(r.Context(), "Resource not found", append(fields.WithError(err).ToSlice(), log.FieldOperation, operation)...)
	}
	NewJSONResponse().Status(status).Body(body).Write(w)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, core.ErrStorage):
		return http.StatusInternalServerError, log.ErrorTypeDatabase
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, log.ErrorTypeValidation
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal
	}
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
