package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// averageMonthDays is the mean Gregorian month length used for goal horizons.
const averageMonthDays = 30.44

// TimeLeft is the remaining horizon of a goal.
type TimeLeft struct {
	Months int  `json:"months"`
	Days   int  `json:"days"`
	IsPast bool `json:"isPast"`
}

// Progress returns the completion percentage of a goal, capped at 100.
func Progress(g Goal) (float64, error) {
	if g.TargetAmount.Cents <= 0 {
		return 0, ErrInvalidTarget
	}
	ratio := float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents)
	return math.Min(ratio, 1) * 100, nil
}

// TimeRemaining splits the days from today to the goal's target date into
// average-length months and leftover days.
func TimeRemaining(g Goal, today Date) TimeLeft {
	if g.TargetDate.Before(today) {
		return TimeLeft{IsPast: true}
	}
	days := today.DaysUntil(g.TargetDate)
	months := int(math.Floor(float64(days) / averageMonthDays))
	days -= int(math.Floor(float64(months) * averageMonthDays))
	return TimeLeft{Months: months, Days: days}
}

// RequiredMonthly is the amount to save each month to reach the target by
// the target date. A partial month counts as a full one.
func RequiredMonthly(g Goal, today Date) Money {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Cents <= 0 {
		return Money{}
	}
	left := TimeRemaining(g, today)
	if left.IsPast {
		return Money{}
	}
	periods := left.Months
	if left.Days > 0 {
		periods++
	}
	periods = max(periods, 1)
	return MoneyFromDecimal(remaining.Decimal().Div(decimal.NewFromInt(int64(periods))))
}
