package http

import (
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/services"
)

type goalRequest struct {
	Name         string        `json:"name"`
	TargetAmount core.Money    `json:"targetAmount"`
	TargetDate   core.Date     `json:"targetDate"`
	Priority     core.Priority `json:"priority"`
	// CurrentAmount is only read on update.
	CurrentAmount core.Money `json:"currentAmount"`
}

type contributionRequest struct {
	Amount core.Money `json:"amount"`
}

type goalListResponse struct {
	Goals []services.GoalView `json:"goals"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Goals.List(r.Context())
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(goalListResponse{Goals: goals}).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	g, err := s.deps.Goals.Create(r.Context(), services.NewGoal{
		Name:         sanitizeInput(req.Name),
		TargetAmount: req.TargetAmount,
		TargetDate:   req.TargetDate,
		Priority:     req.Priority,
	})
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(g).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	g, err := s.deps.Goals.Update(r.Context(), core.Goal{
		ID:            r.PathValue("id"),
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    req.TargetDate,
		Priority:      req.Priority,
	})
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleContribute adds money to an active goal. The contribution is also
// recorded as a savings expense.
func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	id := r.PathValue("id")
	g, err := s.deps.Goals.Contribute(r.Context(), id, req.Amount)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Goal contribution recorded",
		applog.FieldGoalID, id,
		applog.FieldAmountCents, req.Amount.Cents,
		applog.FieldOperation, applog.OpContribute)
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.deps.Goals.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}
