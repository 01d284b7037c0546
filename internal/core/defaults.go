package core

// FallbackCategory receives expenses whose category input matches nothing.
const FallbackCategory = "Other"

// defaultCategories seeds a fresh category store.
var defaultCategories = [...]Category{
	{Name: "Food", BudgetLimit: 5000},
	{Name: "Travel", BudgetLimit: 3000},
	{Name: "Entertainment", BudgetLimit: 2000},
	{Name: "Shopping", BudgetLimit: 4000},
	{Name: "Bills", BudgetLimit: 6000},
	{Name: "Healthcare", BudgetLimit: 1500},
	{Name: "Education", BudgetLimit: 3000},
	{Name: "Other", BudgetLimit: 1000},
}

// DefaultCategories returns a fresh copy of the seed categories.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories[:])
	return out
}
