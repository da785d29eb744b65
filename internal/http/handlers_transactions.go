package http

import (
	"net/http"
	"strings"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

type transactionRequest struct {
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Date        core.Date            `json:"date"`
	Recurring   bool                 `json:"recurring"`
}

type transactionUpdateRequest struct {
	Description string               `json:"description"`
	Amount      core.Money           `json:"amount"`
	Type        core.TransactionType `json:"type"`
	Category    string               `json:"category"`
	Date        core.Date            `json:"date"`
	Recurring   *bool                `json:"recurring"`
}

type transactionListResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Summary      core.Summary       `json:"summary"`
}

type summaryResponse struct {
	Summary    core.Summary          `json:"summary"`
	ByCategory []core.CategoryAmount `json:"byCategory"`
	Daily      []core.DailyAmount    `json:"daily,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query(), s.today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txs, summary, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(transactionListResponse{Transactions: txs, Summary: summary}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	t, err := s.deps.Transactions.Create(r.Context(), services.NewTransaction{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    sanitizeInput(req.Category),
		Date:        req.Date,
		Recurring:   req.Recurring,
	})
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		Body(t).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.Transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

// handleUpdateTransaction replaces the editable fields of a transaction. A
// zero date keeps the stored one and an absent recurring flag keeps the
// series as it is.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	updated, err := s.deps.Transactions.Edit(r.Context(), r.PathValue("id"), services.TransactionEdit{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    sanitizeInput(req.Category),
		Date:        req.Date,
		Recurring:   req.Recurring,
	})
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.FieldTxID, updated.ID,
		applog.FieldOperation, applog.OpUpdate)
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.deps.Transactions.Delete(r.Context(), id); err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleSummary returns totals and expense breakdowns for a filter. The
// per-day series is only filled for month queries.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f, err := ParseFilter(query, s.today())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txs, summary, err := s.deps.Transactions.List(r.Context(), f)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}

	resp := summaryResponse{
		Summary:    summary,
		ByCategory: core.SpendingByCategory(txs),
	}
	if query.Get("from") == "" {
		m := ParseMonthParams(query, s.today())
		resp.Daily = core.DailyExpenses(txs, m.Year, m.Month)
	}
	NewJSONResponse().Body(resp).Write(w)
}
