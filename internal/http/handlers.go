package http

import (
	"context"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

const readyTimeout = 5 * time.Second

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
	Requests  int64  `json:"requests"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type catchUpResponse struct {
	services.CatchUpReport
	DurationMs int64 `json:"durationMs"`
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(healthResponse{
		Status:    "ok",
		Timestamp: s.now().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Requests:  s.TotalRequests(),
	}).Write(w)
}

// handleReady reports 503 while the storage check fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ready", Checks: map[string]string{"storage": "ok"}}
	status := http.StatusOK

	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			resp.Status = "not_ready"
			resp.Checks["storage"] = "failed"
			status = http.StatusServiceUnavailable
		}
	}
	if s.deps.Advisor == nil {
		resp.Checks["advisor"] = "disabled"
	} else {
		resp.Checks["advisor"] = "ok"
	}
	NewJSONResponse().Status(status).Body(resp).Write(w)
}

// handleCatchUp materializes recurring occurrences due on or before the
// asOf query parameter, or today.
func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	asOf := s.today()
	if v := r.URL.Query().Get("asOf"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		asOf = d
	}

	report, err := s.deps.Recurring.CatchUp(r.Context(), asOf)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(catchUpResponse{
		CatchUpReport: report,
		DurationMs:    report.Duration.Milliseconds(),
	}).Write(w)
}
