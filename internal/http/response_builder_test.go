package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget/internal/core"
	"budget/internal/ports"
	"budget/internal/services"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/goals/g-1").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/api/goals/g-1" {
		t.Errorf("Location = %q", got)
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if w.Header().Get("Content-Type") != "" {
		t.Error("Content-Type set on empty response")
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"f": func() {}}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		want    int
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("x"), http.StatusUnprocessableEntity},
		{"not found", NotFoundError("x"), http.StatusNotFound},
		{"conflict", ConflictError("x"), http.StatusConflict},
		{"internal", InternalServerError("x"), http.StatusInternalServerError},
		{"unavailable", ServiceUnavailableError("x"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.want {
				t.Errorf("Status code = %d, want %d", w.Code, tt.want)
			}
			if w.Body.String() != "{\"error\":\"x\"}\n" {
				t.Errorf("Body = %q", w.Body.String())
			}
		})
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantMsg string
	}{
		{
			name:    "validation",
			err:     fmt.Errorf("create: %w", fmt.Errorf("%w: %w", services.ErrInvalidInput, core.ErrInvalidAmount)),
			want:    http.StatusUnprocessableEntity,
			wantMsg: core.ErrInvalidAmount.Error(),
		},
		{
			name:    "not found",
			err:     fmt.Errorf("get goal g-1: %w", ports.ErrNotFound),
			want:    http.StatusNotFound,
			wantMsg: "not found",
		},
		{
			name:    "inactive goal",
			err:     fmt.Errorf("contribute to g-1: %w", services.ErrGoalNotActive),
			want:    http.StatusConflict,
			wantMsg: services.ErrGoalNotActive.Error(),
		},
		{
			name:    "unexpected",
			err:     errors.New("disk on fire"),
			want:    http.StatusInternalServerError,
			wantMsg: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
			w := httptest.NewRecorder()
			errorFor(r, tt.err).Write(w)
			if w.Code != tt.want {
				t.Errorf("Status code = %d, want %d", w.Code, tt.want)
			}
			want := fmt.Sprintf("{\"error\":%q}\n", tt.wantMsg)
			if w.Body.String() != want {
				t.Errorf("Body = %q, want %q", w.Body.String(), want)
			}
		})
	}
}
