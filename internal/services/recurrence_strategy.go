// Package services provides business logic and orchestration services.
//
// This file holds the per-frequency cursor steppers used by the recurrence
// engine. Each frequency maps to a Stepper that computes the next due date
// from the current one, so new frequencies plug in without touching the
// catch-up loop.
package services

import (
	"budget/internal/core"
	"time"
)

// Stepper advances a recurrence cursor by one period.
// Implementations must be pure and return a date strictly after cursor.
type Stepper interface {
	// Next returns the due date following cursor. anchor is the series'
	// original date, which fixes the preferred day of month.
	Next(cursor, anchor core.Date) core.Date
}

// StepperFunc adapts a plain function to the Stepper interface.
type StepperFunc func(cursor, anchor core.Date) core.Date

func (f StepperFunc) Next(cursor, anchor core.Date) core.Date { return f(cursor, anchor) }

// MonthlyStepper moves to the same day next month, clamped to the month's
// last day. The anchor day wins over the cursor day so a short month does
// not pull later occurrences earlier (Jan 31, Feb 29, Mar 31).
type MonthlyStepper struct{}

func (MonthlyStepper) Next(cursor, anchor core.Date) core.Date {
	day := cursor.Day()
	if !anchor.IsZero() {
		day = anchor.Day()
	}
	year, month := cursor.Year(), cursor.Month()+1
	if month > 12 {
		year, month = year+1, 1
	}
	return core.NewDate(year, month, min(day, core.DaysIn(year, time.Month(month))))
}

// YearlyStepper moves to the anchor's day and month next year. Feb 29
// anchors fall on Feb 28 in common years.
type YearlyStepper struct{}

func (YearlyStepper) Next(cursor, anchor core.Date) core.Date {
	if anchor.IsZero() {
		anchor = cursor
	}
	year, month := cursor.Year()+1, anchor.Month()
	return core.NewDate(year, month, min(anchor.Day(), core.DaysIn(year, time.Month(month))))
}

// WeeklyStepper moves seven days ahead.
type WeeklyStepper struct{}

func (WeeklyStepper) Next(cursor, _ core.Date) core.Date {
	return cursor.AddDays(7)
}

// defaultSteppers returns the frequencies every engine starts with.
func defaultSteppers() map[core.Frequency]Stepper {
	return map[core.Frequency]Stepper{
		core.Monthly: MonthlyStepper{},
	}
}
