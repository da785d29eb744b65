package services

import (
	"budget/internal/core"
	"budget/internal/ids"
	"budget/internal/ports"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NewGoal is the input for GoalService.Create.
type NewGoal struct {
	Name         string
	TargetAmount core.Money
	TargetDate   core.Date
	Priority     core.Priority
}

// GoalView is a goal with its derived progress figures.
type GoalView struct {
	core.Goal
	Progress        float64       `json:"progress"`
	TimeLeft        core.TimeLeft `json:"timeLeft"`
	RequiredMonthly core.Money    `json:"requiredMonthly"`
}

type GoalService struct {
	goals        ports.GoalStore
	transactions *TransactionService
	ids          ids.Generator
	now          func() time.Time
}

// NewGoalService creates the service. Contributions are recorded as
// transactions through transactions.
func NewGoalService(goals ports.GoalStore, transactions *TransactionService, gen ids.Generator) *GoalService {
	return &GoalService{
		goals:        goals,
		transactions: transactions,
		ids:          gen,
		now:          time.Now,
	}
}

func (s *GoalService) Create(ctx context.Context, in NewGoal) (core.Goal, error) {
	g := core.Goal{
		ID:           s.ids.NewID(),
		Name:         strings.TrimSpace(in.Name),
		TargetAmount: in.TargetAmount,
		TargetDate:   in.TargetDate,
		Priority:     in.Priority,
		Status:       core.GoalActive,
	}
	if g.Priority == "" {
		g.Priority = core.PriorityMedium
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, invalid(err)
	}
	if err := s.goals.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal created", "id", g.ID, "target", g.TargetAmount.String())
	return g, nil
}

// Update replaces the editable fields of a goal. Status is kept and the
// current amount is clamped to the new target.
func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	existing, err := s.goals.GetGoal(ctx, g.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", g.ID, err)
	}
	g.Name = strings.TrimSpace(g.Name)
	g.Status = existing.Status
	g.ClampCurrent()
	if err := g.Validate(); err != nil {
		return core.Goal{}, invalid(err)
	}
	if err := s.goals.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}

func (s *GoalService) Delete(ctx context.Context, id string) error {
	if err := s.goals.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}

// List returns every goal with progress computed against today.
func (s *GoalService) List(ctx context.Context) ([]GoalView, error) {
	goals, err := s.goals.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	today := core.DateOf(s.now())
	out := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, s.view(g, today))
	}
	return out, nil
}

func (s *GoalService) view(g core.Goal, today core.Date) GoalView {
	// Stored goals always have a positive target.
	progress, _ := core.Progress(g)
	return GoalView{
		Goal:            g,
		Progress:        progress,
		TimeLeft:        core.TimeRemaining(g, today),
		RequiredMonthly: core.RequiredMonthly(g, today),
	}
}

// Contribute adds amount to an active goal, clamped to the target, and
// records the full amount as a savings expense dated today. The expense is
// validated before anything is written, and the goal is restored if the
// expense cannot be stored.
func (s *GoalService) Contribute(ctx context.Context, id string, amount core.Money) (core.Goal, error) {
	if err := amount.Validate(); err != nil {
		return core.Goal{}, invalid(err)
	}
	g, err := s.goals.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	if g.Status != core.GoalActive {
		return core.Goal{}, fmt.Errorf("contribute to %s: %w", id, ErrGoalNotActive)
	}

	var record core.Transaction
	if s.transactions != nil {
		record, err = s.transactions.build(NewTransaction{
			Description: "Contribution to " + g.Name,
			Amount:      amount,
			Type:        core.Expense,
			Category:    core.SavingsCategory,
			Date:        core.DateOf(s.now()),
		})
		if err != nil {
			return core.Goal{}, fmt.Errorf("record contribution: %w", err)
		}
	}

	previous := g
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.ClampCurrent()
	if err := s.goals.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}

	if s.transactions != nil {
		if err := s.transactions.insert(ctx, record); err != nil {
			if rerr := s.goals.SaveGoal(ctx, previous); rerr != nil {
				slog.ErrorContext(ctx, "Failed to restore goal after contribution error",
					"id", id,
					"error", rerr)
			}
			return core.Goal{}, fmt.Errorf("record contribution: %w", err)
		}
	}
	return g, nil
}

// Complete marks a goal completed and snaps its current amount to the target.
func (s *GoalService) Complete(ctx context.Context, id string) (core.Goal, error) {
	g, err := s.goals.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	g.Status = core.GoalCompleted
	g.CurrentAmount = g.TargetAmount
	if err := s.goals.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	return g, nil
}
