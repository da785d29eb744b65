package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/services"

	"golang.org/x/sync/semaphore"
)

// DefaultAdvisorTimeout bounds one advisor request when Deps leaves it unset.
const DefaultAdvisorTimeout = 60 * time.Second

// Advisor answers budget questions and suggests categories.
type Advisor interface {
	BudgetAnalysis(ctx context.Context, query string, transactions []core.Transaction, summary core.Summary) string
	SuggestCategory(ctx context.Context, description string, categories []string, kind core.TransactionType) string
}

// Deps are the collaborators of the API server. Advisor, Ready and Limiter
// are optional.
type Deps struct {
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Categories   *services.CategoryService
	Recurring    *services.RecurringProcessor

	Advisor        Advisor
	AdvisorTimeout time.Duration

	Ready   func(ctx context.Context) error
	Limiter *ratelimit.Limiter
	Logger  *applog.Logger
}

// Server is the budget JSON API.
type Server struct {
	http.Server

	deps     Deps
	analysis *semaphore.Weighted
	trace    *trace.Middleware
	started  time.Time
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}
	if deps.AdvisorTimeout <= 0 {
		deps.AdvisorTimeout = DefaultAdvisorTimeout
	}

	s := &Server{
		deps:     deps,
		analysis: semaphore.NewWeighted(1),
		trace:    trace.NewMiddleware(),
		started:  time.Now(),
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("PUT /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleContribute)
	mux.HandleFunc("POST /api/goals/{id}/complete", s.handleCompleteGoal)

	mux.HandleFunc("POST /api/advisor/analysis", s.handleAnalysis)
	mux.HandleFunc("POST /api/advisor/suggest-category", s.handleSuggestCategory)

	mux.HandleFunc("POST /api/recurring/catch-up", s.handleCatchUp)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// middleware wraps h, outermost first, with request tracing, request
// logging, security headers and rate limiting of writes.
func (s *Server) middleware(h http.Handler) http.Handler {
	if s.deps.Limiter != nil {
		h = limitWrites(h, s.deps.Limiter.Middleware(security.ClientIP, writeRateLimited)(h))
	}
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = applog.Middleware(s.deps.Logger, trace.FromRequest, security.ClientIP)(h)
	return s.trace.Handler(h)
}

// limitWrites routes safe methods to open and everything else to limited.
func limitWrites(open, limited http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			open.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// TotalRequests returns the number of requests served since start.
func (s *Server) TotalRequests() int64 {
	return s.trace.TotalRequests()
}

// Shutdown gracefully shuts down the server. Later calls return nil.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
