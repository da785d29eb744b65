package core

import (
	"errors"
	"testing"
)

func goal(target, current int64, targetDate Date) Goal {
	return Goal{
		Name:          "Emergency fund",
		TargetAmount:  Money{Cents: target},
		CurrentAmount: Money{Cents: current},
		TargetDate:    targetDate,
		Priority:      PriorityMedium,
		Status:        GoalActive,
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name            string
		target, current int64
		want            float64
	}{
		{"quarter", 100000, 25000, 25},
		{"none", 100000, 0, 0},
		{"complete", 100000, 100000, 100},
		{"over target capped", 100000, 180000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Progress(goal(tt.target, tt.current, NewDate(2025, 1, 1)))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Progress(goal(0, 0, NewDate(2025, 1, 1))); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestTimeRemaining(t *testing.T) {
	today := NewDate(2024, 1, 1)
	tests := []struct {
		name   string
		target Date
		want   TimeLeft
	}{
		{"same day", today, TimeLeft{}},
		{"thirty days", NewDate(2024, 1, 31), TimeLeft{Days: 30}},
		{"just over two months", NewDate(2024, 3, 2), TimeLeft{Months: 2, Days: 1}},
		{"ninety one days", NewDate(2024, 4, 1), TimeLeft{Months: 2, Days: 31}},
		{"past", NewDate(2023, 12, 31), TimeLeft{IsPast: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeRemaining(goal(100000, 0, tt.target), today)
			if got != tt.want {
				t.Errorf("TimeRemaining() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequiredMonthly(t *testing.T) {
	today := NewDate(2024, 1, 1)
	tests := []struct {
		name            string
		target, current int64
		date            Date
		want            int64
	}{
		{"three periods", 100000, 25000, NewDate(2024, 4, 1), 25000},
		{"rounded to cents", 10000, 0, NewDate(2024, 3, 2), 3333},
		{"due today needs everything", 50000, 10000, today, 40000},
		{"reached", 50000, 50000, NewDate(2024, 6, 1), 0},
		{"past", 50000, 0, NewDate(2023, 6, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredMonthly(goal(tt.target, tt.current, tt.date), today)
			if got.Cents != tt.want {
				t.Errorf("RequiredMonthly() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}
