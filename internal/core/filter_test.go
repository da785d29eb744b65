package core

import "testing"

func sampleTransactions() []Transaction {
	return []Transaction{
		{ID: "a", Description: "Salary", Amount: Money{Cents: 300000}, Type: Income, Category: "Salary", Date: NewDate(2024, 1, 1)},
		{ID: "b", Description: "Groceries", Amount: Money{Cents: 4520}, Type: Expense, Category: "Food:Groceries", Date: NewDate(2024, 1, 5)},
		{ID: "c", Description: "Pizza", Amount: Money{Cents: 1800}, Type: Expense, Category: "Food:Restaurants", Date: NewDate(2024, 1, 5)},
		{ID: "d", Description: "Rent", Amount: Money{Cents: 95000}, Type: Expense, Category: "Housing", Date: NewDate(2024, 1, 31)},
		{ID: "e", Description: "Bus", Amount: Money{Cents: 250}, Type: Expense, Category: "Transport:Public", Date: NewDate(2024, 2, 1)},
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterApply(t *testing.T) {
	jan := MonthFilter(2024, 1)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "whole month newest first, ties keep input order",
			filter: jan,
			want:   []string{"d", "b", "c", "a"},
		},
		{
			name:   "category prefix matches children",
			filter: Filter{DateFrom: jan.DateFrom, DateTo: jan.DateTo, Category: "Food", Type: FilterAll},
			want:   []string{"b", "c"},
		},
		{
			name:   "exact child category",
			filter: Filter{DateFrom: jan.DateFrom, DateTo: jan.DateTo, Category: "Food:Restaurants", Type: FilterAll},
			want:   []string{"c"},
		},
		{
			name:   "type filter",
			filter: Filter{DateFrom: jan.DateFrom, DateTo: jan.DateTo, Category: FilterAll, Type: "income"},
			want:   []string{"a"},
		},
		{
			name:   "bounds are inclusive",
			filter: Filter{DateFrom: NewDate(2024, 1, 5), DateTo: NewDate(2024, 2, 1), Category: FilterAll, Type: FilterAll},
			want:   []string{"e", "d", "b", "c"},
		},
		{
			name:   "missing lower bound matches nothing",
			filter: Filter{DateTo: jan.DateTo, Category: FilterAll, Type: FilterAll},
			want:   []string{},
		},
		{
			name:   "missing upper bound matches nothing",
			filter: Filter{DateFrom: jan.DateFrom, Category: FilterAll, Type: FilterAll},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(sampleTransactions()))
			if !equalIDs(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year, month int
		first, last string
	}{
		{2024, 2, "2024-02-01", "2024-02-29"},
		{2023, 2, "2023-02-01", "2023-02-28"},
		{2024, 12, "2024-12-01", "2024-12-31"},
		{2024, 4, "2024-04-01", "2024-04-30"},
	}
	for _, tt := range tests {
		first, last := MonthRange(tt.year, tt.month)
		if first.String() != tt.first || last.String() != tt.last {
			t.Errorf("MonthRange(%d, %d) = %s..%s, want %s..%s", tt.year, tt.month, first, last, tt.first, tt.last)
		}
	}
}
