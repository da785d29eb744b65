package core

import (
	"slices"
	"strings"
)

// FilterAll matches every category or type.
const FilterAll = "all"

// Filter selects transactions for listing and aggregation.
type Filter struct {
	DateFrom Date
	DateTo   Date
	Category string
	Type     string
}

// MonthFilter covers the whole calendar month with no category or type restriction.
func MonthFilter(year, month int) Filter {
	from, to := MonthRange(year, month)
	return Filter{DateFrom: from, DateTo: to, Category: FilterAll, Type: FilterAll}
}

// MonthRange returns the first and last day of a month.
func MonthRange(year, month int) (Date, Date) {
	first := NewDate(year, month, 1)
	last := NewDate(year, month+1, 0)
	return first, last
}

// Matches reports whether t passes the filter. Both bounds must be set;
// an unset bound matches nothing.
func (f Filter) Matches(t Transaction) bool {
	if f.DateFrom.IsZero() || f.DateTo.IsZero() {
		return false
	}
	if t.Date.Before(f.DateFrom) || t.Date.After(f.DateTo) {
		return false
	}
	if !matchesAll(f.Category) && !strings.HasPrefix(t.Category, f.Category) {
		return false
	}
	if !matchesAll(f.Type) && string(t.Type) != f.Type {
		return false
	}
	return true
}

func matchesAll(v string) bool {
	return v == "" || v == FilterAll
}

// Apply returns the matching transactions sorted by date, newest first.
// Transactions on the same date keep their input order.
func (f Filter) Apply(transactions []Transaction) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}
