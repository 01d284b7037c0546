package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// MonthOverview is a compact summary for a specific YYYY-MM month.
type MonthOverview struct {
	Month      string
	Total      float64
	ByCategory []CategoryAmount
}

// Total returns the sum of all expense amounts, 0 for none.
func Total(expenses []Expense) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(toDecimal(e.Amount))
	}
	return total.InexactFloat64()
}

// Summarize groups amounts by category in one pass. Categories appear in
// the order of their first expense.
func Summarize(expenses []Expense) []CategoryAmount {
	index := make(map[string]int)
	sums := make([]decimal.Decimal, 0)
	out := make([]CategoryAmount, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryAmount{Name: e.Category})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(toDecimal(e.Amount))
	}
	for i := range out {
		out[i].Amount = sums[i].InexactFloat64()
	}
	return out
}

// Lookup returns the amount for name and whether it is present.
func Lookup(amounts []CategoryAmount, name string) (float64, bool) {
	for _, a := range amounts {
		if a.Name == name {
			return a.Amount, true
		}
	}
	return 0, false
}

// FilterByCategory returns the expenses whose category matches name exactly.
func FilterByCategory(expenses []Expense, name string) []Expense {
	out := make([]Expense, 0)
	for _, e := range expenses {
		if e.Category == name {
			out = append(out, e)
		}
	}
	return out
}

// FilterByMonth returns the expenses dated within the YYYY-MM month.
func FilterByMonth(expenses []Expense, month string) []Expense {
	out := make([]Expense, 0)
	for _, e := range expenses {
		if e.InMonth(month) {
			out = append(out, e)
		}
	}
	return out
}
