package backend

import (
	"budget/internal/ids"
	"budget/internal/services"
)

// Services are the application services over one backend.
type Services struct {
	Transactions *services.TransactionService
	Goals        *services.GoalService
	Categories   *services.CategoryService
	Recurring    *services.RecurringProcessor
}

// NewServices wires the services to r. A nil gen uses random UUIDs.
func NewServices(r *Result, gen ids.Generator) *Services {
	if gen == nil {
		gen = ids.UUID{}
	}
	txs := services.NewTransactionService(r.Transactions, gen, r.Publisher)
	return &Services{
		Transactions: txs,
		Goals:        services.NewGoalService(r.Goals, txs, gen),
		Categories:   services.NewCategoryService(r.Categories),
		Recurring:    services.NewRecurringProcessor(r.Transactions, services.NewEngine(gen), r.Publisher),
	}
}
