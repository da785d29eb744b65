package http

import (
	"context"
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

type analysisRequest struct {
	Query string `json:"query"`
}

type analysisResponse struct {
	Analysis     string       `json:"analysis"`
	Transactions int          `json:"transactions"`
	Summary      core.Summary `json:"summary"`
}

type suggestionRequest struct {
	Description string               `json:"description"`
	Type        core.TransactionType `json:"type"`
}

type suggestionResponse struct {
	Category string `json:"category"`
}

// handleAnalysis answers a question about the transactions selected by the
// query-string filter. One analysis runs at a time; a concurrent request
// gets 409.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.deps.Advisor == nil {
		ServiceUnavailableError("advisor is not configured").Write(w)
		return
	}
	var req analysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Query = sanitizeInput(req.Query)
	if req.Query == "" {
		UnprocessableEntityError("query is required").Write(w)
		return
	}
	f, err := ParseFilter(r.URL.Query(), s.today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if !s.analysis.TryAcquire(1) {
		ConflictError("an analysis is already running").Write(w)
		return
	}
	defer s.analysis.Release(1)

	txs, summary, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.deps.AdvisorTimeout)
	defer cancel()
	text := s.deps.Advisor.BudgetAnalysis(ctx, req.Query, txs, summary)

	applog.FromContext(ctx).InfoContext(ctx, "Budget analysis served",
		applog.FieldOperation, applog.OpAnalyze,
		"transactions", len(txs))
	NewJSONResponse().Body(analysisResponse{
		Analysis:     text,
		Transactions: len(txs),
		Summary:      summary,
	}).Write(w)
}

// handleSuggestCategory picks a stored category for a description. The type
// defaults to expense.
func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Advisor == nil {
		ServiceUnavailableError("advisor is not configured").Write(w)
		return
	}
	var req suggestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Description = sanitizeInput(req.Description)
	if req.Description == "" {
		UnprocessableEntityError(core.ErrEmptyDescription.Error()).Write(w)
		return
	}
	if req.Type == "" {
		req.Type = core.Expense
	}
	if !req.Type.Valid() {
		UnprocessableEntityError(core.ErrInvalidType.Error()).Write(w)
		return
	}

	cats, err := s.deps.Categories.List(r.Context())
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.deps.AdvisorTimeout)
	defer cancel()
	category := s.deps.Advisor.SuggestCategory(ctx, req.Description, cats, req.Type)

	applog.FromContext(ctx).DebugContext(ctx, "Category suggested",
		applog.FieldOperation, applog.OpSuggest,
		applog.FieldCategory, category)
	NewJSONResponse().Body(suggestionResponse{Category: category}).Write(w)
}
