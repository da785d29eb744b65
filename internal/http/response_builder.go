// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing JSON responses.
// It keeps status codes, headers and error bodies consistent across handlers.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/ports"
	"budget/internal/services"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes no
// content.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	data, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(data, '\n'))
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, message)
}

func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ServiceUnavailableError creates a 503 response for disabled or unhealthy
// dependencies.
func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message)
}

// errorFor maps a service error to its response. Validation failures carry
// their message; unexpected errors are logged and hidden from the client.
func errorFor(r *http.Request, err error) *JSONResponseBuilder {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return UnprocessableEntityError(validationMessage(err))
	case errors.Is(err, ports.ErrNotFound):
		return NotFoundError("not found")
	case errors.Is(err, services.ErrGoalNotActive):
		return ConflictError(services.ErrGoalNotActive.Error())
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		applog.FieldOperation, r.Method+" "+r.URL.Path,
		applog.FieldError, err)
	return InternalServerError("internal error")
}

// validationMessage returns the domain sentinel behind a validation error,
// which reads better than the wrapped chain.
func validationMessage(err error) string {
	for _, sentinel := range []error{
		core.ErrEmptyDescription,
		core.ErrDescriptionTooLong,
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrEmptyCategory,
		core.ErrInvalidDate,
		core.ErrEmptyGoalName,
		core.ErrGoalNameTooLong,
		core.ErrInvalidTarget,
		core.ErrInvalidPriority,
		core.ErrInvalidFrequency,
		core.ErrCursorBeforeOrigin,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
