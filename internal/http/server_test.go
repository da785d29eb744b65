package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/ids"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/services"
	"budget/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdvisor struct {
	analysis   string
	suggestion string
	gotQuery   string
	gotTxs     int
	gotCats    []string
}

func (a *stubAdvisor) BudgetAnalysis(_ context.Context, query string, txs []core.Transaction, _ core.Summary) string {
	a.gotQuery = query
	a.gotTxs = len(txs)
	return a.analysis
}

func (a *stubAdvisor) SuggestCategory(_ context.Context, _ string, categories []string, _ core.TransactionType) string {
	a.gotCats = categories
	return a.suggestion
}

var testToday = time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()
	store := memory.New([]string{"Food", "Housing", "Housing:Rent", "Salary"})
	gen := ids.NewSequence("t")
	txs := services.NewTransactionService(store, gen, nil)
	deps := Deps{
		Transactions: txs,
		Goals:        services.NewGoalService(store, txs, gen),
		Categories:   services.NewCategoryService(store),
		Recurring:    services.NewRecurringProcessor(store, services.NewEngine(gen), nil),
		Logger:       applog.New(applog.Config{Output: io.Discard}),
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	srv.now = func() time.Time { return testToday }
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.RemoteAddr = "192.0.2.10:5555"
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndMiddleware(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[healthResponse](t, rr).Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Equal(t, int64(1), srv.TotalRequests())
}

func TestReady(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[readyResponse](t, rr)
	assert.Equal(t, "ready", got.Status)
	assert.Equal(t, "disabled", got.Checks["advisor"])

	srv = newTestServer(t, func(d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("db down") }
	})
	rr = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "failed", decode[readyResponse](t, rr).Checks["storage"])
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Groceries","amount":"12,50","type":"expense","category":"Food","date":"2024-04-02"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[core.Transaction](t, rr)
	assert.Equal(t, "/api/transactions/"+created.ID, rr.Header().Get("Location"))
	assert.Equal(t, int64(1250), created.Amount.Cents)

	rr = do(t, srv, http.MethodGet, "/api/transactions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Groceries", decode[core.Transaction](t, rr).Description)

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+created.ID,
		`{"description":"Market","amount":20,"type":"expense","category":"Food"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[core.Transaction](t, rr)
	assert.Equal(t, "Market", updated.Description)
	assert.Equal(t, "2024-04-02", updated.Date.String(), "zero date keeps the stored one")

	rr = do(t, srv, http.MethodGet, "/api/transactions?year=2024&month=4", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[transactionListResponse](t, rr)
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, int64(2000), list.Summary.Expenses.Cents)
	assert.Equal(t, int64(-2000), list.Summary.Balance.Cents)

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateTogglesRecurrence(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Gym","amount":40,"type":"expense","category":"Food","date":"2024-01-15"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := decode[core.Transaction](t, rr).ID

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"description":"Gym","amount":40,"type":"expense","category":"Food","date":"2024-01-31","recurring":true}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	on := decode[core.Transaction](t, rr)
	require.NotNil(t, on.Recurring)
	assert.Equal(t, id, on.RecurringID)
	assert.Equal(t, "2024-01-31", on.Recurring.OriginalDate.String())
	assert.Equal(t, "2024-02-29", on.Recurring.NextDueDate.String())

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"description":"Gym (annual)","amount":40,"type":"expense","category":"Food"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	kept := decode[core.Transaction](t, rr)
	require.NotNil(t, kept.Recurring, "absent flag keeps the series")
	assert.Equal(t, "2024-02-29", kept.Recurring.NextDueDate.String())

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"description":"Gym","amount":40,"type":"expense","category":"Food","recurring":false}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, decode[core.Transaction](t, rr).Recurring)

	rr = do(t, srv, http.MethodPost, "/api/recurring/catch-up?asOf=2024-04-20", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Zero(t, decode[catchUpResponse](t, rr).Created)
}

func TestTransactionErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"empty description", http.MethodPost, "/api/transactions", `{"description":" ","amount":5,"type":"expense","category":"Food"}`, http.StatusUnprocessableEntity},
		{"zero amount", http.MethodPost, "/api/transactions", `{"description":"x","amount":0,"type":"expense","category":"Food"}`, http.StatusUnprocessableEntity},
		{"bad type", http.MethodPost, "/api/transactions", `{"description":"x","amount":5,"type":"gift","category":"Food"}`, http.StatusUnprocessableEntity},
		{"unknown field", http.MethodPost, "/api/transactions", `{"descr":"x"}`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/transactions", "", http.StatusBadRequest},
		{"bad filter type", http.MethodGet, "/api/transactions?type=gift", "", http.StatusBadRequest},
		{"half span", http.MethodGet, "/api/transactions?from=2024-01-01", "", http.StatusBadRequest},
		{"update missing", http.MethodPut, "/api/transactions/nope", `{"description":"x","amount":5,"type":"expense","category":"Food"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/transactions/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[ErrorBody](t, rr).Error)
		})
	}
}

func TestRecurringCatchUp(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Rent","amount":800,"type":"expense","category":"Housing:Rent","date":"2024-01-31","recurring":true}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	origin := decode[core.Transaction](t, rr)
	require.NotNil(t, origin.Recurring)
	assert.Equal(t, "2024-02-29", origin.Recurring.NextDueDate.String())

	rr = do(t, srv, http.MethodPost, "/api/recurring/catch-up", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode[catchUpResponse](t, rr)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, "2024-04-20", report.AsOf.String())

	// A second pass on the same day finds nothing due.
	rr = do(t, srv, http.MethodPost, "/api/recurring/catch-up", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Zero(t, decode[catchUpResponse](t, rr).Created)

	rr = do(t, srv, http.MethodGet, "/api/transactions?from=2024-01-01&to=2024-12-31", "")
	list := decode[transactionListResponse](t, rr)
	dates := make([]string, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		dates = append(dates, tx.Date.String())
	}
	assert.ElementsMatch(t, []string{"2024-01-31", "2024-02-29", "2024-03-31"}, dates)

	rr = do(t, srv, http.MethodPost, "/api/recurring/catch-up?asOf=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, body := range []string{
		`{"description":"Salary","amount":2000,"type":"income","category":"Salary","date":"2024-04-01"}`,
		`{"description":"Lunch","amount":15,"type":"expense","category":"Food","date":"2024-04-03"}`,
		`{"description":"Dinner","amount":25,"type":"expense","category":"Food","date":"2024-04-03"}`,
		`{"description":"Rent","amount":700,"type":"expense","category":"Housing:Rent","date":"2024-04-05"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions", body).Code)
	}

	rr := do(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[summaryResponse](t, rr)
	assert.Equal(t, int64(200000), got.Summary.Income.Cents)
	assert.Equal(t, int64(74000), got.Summary.Expenses.Cents)
	require.Len(t, got.ByCategory, 2)
	assert.Equal(t, "Housing:Rent", got.ByCategory[0].Name)
	require.Len(t, got.Daily, 30)
	assert.Equal(t, int64(4000), got.Daily[2].Amount.Cents)

	rr = do(t, srv, http.MethodGet, "/api/summary?from=2024-04-01&to=2024-04-04&type=expense", "")
	got = decode[summaryResponse](t, rr)
	assert.Equal(t, int64(4000), got.Summary.Expenses.Cents)
	assert.Zero(t, got.Summary.Income.Cents)
	assert.Nil(t, got.Daily)
}

func TestGoals(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Bike","targetAmount":500,"targetDate":"2030-01-01","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	goal := decode[core.Goal](t, rr)
	assert.Equal(t, core.GoalActive, goal.Status)

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/contributions", `{"amount":125}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, int64(12500), decode[core.Goal](t, rr).CurrentAmount.Cents)

	rr = do(t, srv, http.MethodGet, "/api/goals", "")
	require.Equal(t, http.StatusOK, rr.Code)
	goals := decode[goalListResponse](t, rr).Goals
	require.Len(t, goals, 1)
	assert.InDelta(t, 25.0, goals[0].Progress, 0.001)

	rr = do(t, srv, http.MethodPut, "/api/goals/"+goal.ID,
		`{"name":"Road bike","targetAmount":100,"currentAmount":125,"targetDate":"2030-01-01","priority":"low"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, int64(10000), decode[core.Goal](t, rr).CurrentAmount.Cents, "clamped to target")

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.GoalCompleted, decode[core.Goal](t, rr).Status)

	rr = do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/contributions", `{"amount":10}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/goals", `{"name":"","targetAmount":10,"targetDate":"2030-01-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContributionRecordsSavingsExpense(t *testing.T) {
	srv := newTestServer(t, nil)
	goal := decode[core.Goal](t, do(t, srv, http.MethodPost, "/api/goals",
		`{"name":"Trip","targetAmount":300,"targetDate":"2030-06-01"}`))

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/goals/"+goal.ID+"/contributions", `{"amount":40}`).Code)

	txs, _, err := srv.deps.Transactions.List(context.Background(), core.Filter{
		DateFrom: core.NewDate(2000, 1, 1),
		DateTo:   core.NewDate(2100, 1, 1),
		Category: core.SavingsCategory,
		Type:     string(core.Expense),
	})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(4000), txs[0].Amount.Cents)
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[categoryListResponse](t, rr)
	assert.Contains(t, list.Categories, "Housing:Rent")
	assert.Equal(t, []string{"Food", "Salary"}, list.Tree.TopLevel)

	rr = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Utilities","parent":"Housing"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	added := decode[categoryAddResponse](t, rr)
	assert.True(t, added.Added)
	assert.Contains(t, added.Categories, "Housing:Utilities")

	rr = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Utilities","parent":"Housing"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[categoryAddResponse](t, rr).Added)

	rr = do(t, srv, http.MethodPost, "/api/categories", `{"name":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAdvisorDisabled(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodPost, "/api/advisor/analysis", `{"query":"how am I doing?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	rr = do(t, srv, http.MethodPost, "/api/advisor/suggest-category", `{"description":"pizza"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAdvisorAnalysis(t *testing.T) {
	adv := &stubAdvisor{analysis: "Spend less on food."}
	srv := newTestServer(t, func(d *Deps) { d.Advisor = adv })
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Lunch","amount":15,"type":"expense","category":"Food","date":"2024-04-03"}`).Code)

	rr := do(t, srv, http.MethodPost, "/api/advisor/analysis?year=2024&month=4", `{"query":"  how am I doing?  "}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[analysisResponse](t, rr)
	assert.Equal(t, "Spend less on food.", got.Analysis)
	assert.Equal(t, 1, got.Transactions)
	assert.Equal(t, "how am I doing?", adv.gotQuery)

	rr = do(t, srv, http.MethodPost, "/api/advisor/analysis", `{"query":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestAdvisorAnalysisBusy(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) { d.Advisor = &stubAdvisor{} })
	require.True(t, srv.analysis.TryAcquire(1))
	defer srv.analysis.Release(1)

	rr := do(t, srv, http.MethodPost, "/api/advisor/analysis", `{"query":"again"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSuggestCategory(t *testing.T) {
	adv := &stubAdvisor{suggestion: "Food"}
	srv := newTestServer(t, func(d *Deps) { d.Advisor = adv })

	rr := do(t, srv, http.MethodPost, "/api/advisor/suggest-category", `{"description":"pizza night"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Food", decode[suggestionResponse](t, rr).Category)
	assert.Contains(t, adv.gotCats, "Housing:Rent")

	rr = do(t, srv, http.MethodPost, "/api/advisor/suggest-category", `{"description":"pizza","type":"gift"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	rr = do(t, srv, http.MethodPost, "/api/advisor/suggest-category", `{"description":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1})
	srv := newTestServer(t, func(d *Deps) { d.Limiter = limiter })

	body := `{"name":"Gifts"}`
	assert.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/categories", body).Code)

	rr := do(t, srv, http.MethodPost, "/api/categories", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	for range 3 {
		assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/categories", "").Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodPatch, "/api/goals", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t, nil)
	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", bytes.NewReader(nil))
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}
