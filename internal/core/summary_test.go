package core

import "testing"

func TestSummarize(t *testing.T) {
	s := Summarize(MonthFilter(2024, 1).Apply(sampleTransactions()))
	if s.Income.Cents != 300000 {
		t.Errorf("Income = %s, want 3000.00", s.Income)
	}
	if s.Expenses.Cents != 4520+1800+95000 {
		t.Errorf("Expenses = %s, want 1013.20", s.Expenses)
	}
	if s.Balance.Cents != 300000-101320 {
		t.Errorf("Balance = %s, want 1986.80", s.Balance)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Income.Cents != 0 || s.Expenses.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSpendingByCategory(t *testing.T) {
	txs := sampleTransactions()
	txs = append(txs, Transaction{ID: "f", Type: Expense, Amount: Money{Cents: 2000}, Category: "Food:Groceries", Date: NewDate(2024, 1, 9)})

	got := SpendingByCategory(txs)
	want := []CategoryAmount{
		{Name: "Housing", Amount: Money{Cents: 95000}},
		{Name: "Food:Groceries", Amount: Money{Cents: 6520}},
		{Name: "Food:Restaurants", Amount: Money{Cents: 1800}},
		{Name: "Transport:Public", Amount: Money{Cents: 250}},
	}
	if len(got) != len(want) {
		t.Fatalf("SpendingByCategory() returned %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailyExpenses(t *testing.T) {
	got := DailyExpenses(sampleTransactions(), 2024, 1)
	if len(got) != 31 {
		t.Fatalf("expected 31 days, got %d", len(got))
	}
	if got[4].Day != 5 || got[4].Amount.Cents != 6320 {
		t.Errorf("day 5 = %+v, want 63.20", got[4])
	}
	if got[0].Amount.Cents != 0 {
		t.Errorf("income must not count, day 1 = %+v", got[0])
	}
	if got[30].Amount.Cents != 95000 {
		t.Errorf("day 31 = %+v", got[30])
	}
}
