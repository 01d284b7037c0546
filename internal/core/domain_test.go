package core

import (
	"testing"
	"time"
)

func TestNormalizeFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
	}{
		{"daily", Daily},
		{"weekly", Weekly},
		{"monthly", Monthly},
		{"yearly", Yearly},
		{" Weekly ", Weekly},
		{"biweekly", Monthly},
		{"", Monthly},
	}
	for _, tc := range cases {
		if got := NormalizeFrequency(tc.in); got != tc.want {
			t.Fatalf("NormalizeFrequency(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewRecurringExpenseNormalizesFrequency(t *testing.T) {
	e := NewRecurringExpense(99, "Bills", "", "2024-05-01", "biweekly")
	if e.Kind != KindRecurring {
		t.Fatalf("expected recurring kind, got %q", e.Kind)
	}
	if e.Frequency != Monthly {
		t.Fatalf("expected monthly, got %q", e.Frequency)
	}
}

func TestNewExpenseDefaultsDateToToday(t *testing.T) {
	e := NewExpense(10, "Food", "", "")
	if e.Date != time.Now().Format(DateLayout) {
		t.Fatalf("expected today's date, got %q", e.Date)
	}
	if e.Kind != KindRegular || e.Frequency != "" {
		t.Fatalf("expected plain regular expense, got %+v", e)
	}
}

func TestExpenseApply(t *testing.T) {
	e := NewExpense(10, "Food", "lunch", "2024-05-10")
	amount := 12.5
	desc := "dinner"

	got := e.Apply(ExpenseUpdate{Amount: &amount, Description: &desc})
	if got.Amount != 12.5 || got.Description != "dinner" {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Category != "Food" || got.Date != "2024-05-10" {
		t.Fatalf("unset fields changed: %+v", got)
	}
	if e.Amount != 10 {
		t.Fatalf("original mutated: %+v", e)
	}
	if !(ExpenseUpdate{}).IsEmpty() {
		t.Fatalf("zero update should be empty")
	}
}

func TestDefaultCategoriesIsACopy(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 8 {
		t.Fatalf("expected 8 defaults, got %d", len(cats))
	}
	if cats[0].Name != "Food" || cats[0].BudgetLimit != 5000 {
		t.Fatalf("unexpected first default: %+v", cats[0])
	}
	cats[0].BudgetLimit = 1
	if DefaultCategories()[0].BudgetLimit != 5000 {
		t.Fatalf("defaults table was mutated through a copy")
	}
}

func TestSummarizeKeepsFirstAppearanceOrder(t *testing.T) {
	expenses := []Expense{
		NewExpense(10, "Travel", "", "2024-05-01"),
		NewExpense(0.1, "Food", "", "2024-05-02"),
		NewExpense(0.2, "Food", "", "2024-05-03"),
		NewExpense(5, "Travel", "", "2024-06-01"),
	}
	got := Summarize(expenses)
	if len(got) != 2 || got[0].Name != "Travel" || got[1].Name != "Food" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Amount != 15 || got[1].Amount != 0.3 {
		t.Fatalf("unexpected sums: %+v", got)
	}
	if Total(expenses) != 15.3 {
		t.Fatalf("unexpected total: %v", Total(expenses))
	}
	if Total(nil) != 0 {
		t.Fatalf("empty total should be 0")
	}
	if n := len(FilterByMonth(expenses, "2024-05")); n != 3 {
		t.Fatalf("expected 3 expenses in May, got %d", n)
	}
}
