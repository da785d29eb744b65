package core

import (
	"slices"
	"strings"
)

// Summary holds the income, expense and balance totals of a transaction set.
type Summary struct {
	Income   Money `json:"totalIncome"`
	Expenses Money `json:"totalExpenses"`
	Balance  Money `json:"balance"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// DailyAmount is the expense total for one day of a month.
type DailyAmount struct {
	Day    int   `json:"day"`
	Amount Money `json:"amount"`
}

// Summarize sums income and expenses.
func Summarize(transactions []Transaction) Summary {
	var s Summary
	for _, t := range transactions {
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// SpendingByCategory totals expenses per category string, largest first.
func SpendingByCategory(transactions []Transaction) []CategoryAmount {
	totals := map[string]int64{}
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		name := t.Category
		if name == "" {
			name = Uncategorized
		}
		totals[name] += t.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if a.Amount.Cents != b.Amount.Cents {
			if a.Amount.Cents > b.Amount.Cents {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// DailyExpenses totals expenses per day of month for the given month,
// one entry per day including days without spending.
func DailyExpenses(transactions []Transaction, year, month int) []DailyAmount {
	first, last := MonthRange(year, month)
	out := make([]DailyAmount, last.Day())
	for i := range out {
		out[i].Day = i + 1
	}
	for _, t := range transactions {
		if t.Type != Expense || t.Date.Before(first) || t.Date.After(last) {
			continue
		}
		out[t.Date.Day()-1].Amount = out[t.Date.Day()-1].Amount.Add(t.Amount)
	}
	return out
}
