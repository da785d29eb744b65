package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Monthly Frequency = "monthly"

	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// DateLayout is the text form of a calendar date.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds Transaction.Description in bytes.
const MaxDescriptionLength = 200

// MaxGoalNameLength bounds Goal.Name in bytes. It leaves room for the
// goal name inside a contribution's description.
const MaxGoalNameLength = 120

type (
	TransactionType string
	Frequency       string
	Priority        string
	GoalStatus      string

	// Date is a calendar date without time of day, stored as UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		RecurringID string          `json:"recurringId,omitempty"`
		Recurring   *Recurrence     `json:"recurring,omitempty"`
	}

	// Recurrence is carried only by the origin of a recurring series.
	Recurrence struct {
		Frequency    Frequency `json:"frequency"`
		OriginalDate Date      `json:"originalDate"`
		NextDueDate  Date      `json:"nextDueDate"`
	}

	Goal struct {
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		TargetAmount  Money      `json:"targetAmount"`
		CurrentAmount Money      `json:"currentAmount"`
		TargetDate    Date       `json:"targetDate"`
		Priority      Priority   `json:"priority"`
		Status        GoalStatus `json:"status"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyGoalName    = errors.New("empty goal name")
	ErrInvalidTarget    = errors.New("target amount must be positive")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidFrequency = errors.New("invalid frequency")

	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrGoalNameTooLong    = errors.New("goal name too long (max 120 characters)")
	ErrCursorBeforeOrigin = errors.New("next due date before original date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar date in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the number of whole calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Recurring != nil {
		if err := t.Recurring.Validate(); err != nil {
			return fmt.Errorf("invalid recurrence: %w", err)
		}
	}
	return nil
}

// IsOrigin reports whether t starts a recurring series.
func (t Transaction) IsOrigin() bool {
	return t.Recurring != nil
}

// SeriesID returns the identifier occurrences of t's series link to.
func (t Transaction) SeriesID() string {
	if t.RecurringID != "" {
		return t.RecurringID
	}
	return t.ID
}

func (r Recurrence) Validate() error {
	if r.Frequency == "" {
		return ErrInvalidFrequency
	}
	if err := r.OriginalDate.Validate(); err != nil {
		return fmt.Errorf("original date: %w", err)
	}
	if err := r.NextDueDate.Validate(); err != nil {
		return fmt.Errorf("next due date: %w", err)
	}
	if r.NextDueDate.Before(r.OriginalDate) {
		return ErrCursorBeforeOrigin
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if len(g.Name) > MaxGoalNameLength {
		return ErrGoalNameTooLong
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return fmt.Errorf("target date: %w", err)
	}
	if !g.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// ClampCurrent keeps CurrentAmount within [0, TargetAmount].
func (g *Goal) ClampCurrent() {
	if g.CurrentAmount.Cents > g.TargetAmount.Cents {
		g.CurrentAmount = g.TargetAmount
	}
	if g.CurrentAmount.Cents < 0 {
		g.CurrentAmount = Money{}
	}
}
