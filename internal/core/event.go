package core

// Collection names a persisted collection.
type Collection string

const (
	CollectionExpenses   Collection = "expenses"
	CollectionCategories Collection = "categories"
)

// Operation names a ledger mutation.
type Operation string

const (
	OpAddExpense    Operation = "add_expense"
	OpUpdateExpense Operation = "update_expense"
	OpDeleteExpense Operation = "delete_expense"
	OpAddCategory   Operation = "add_category"
	OpUpdateBudget  Operation = "update_category_budget"
	OpResetExpenses Operation = "reset_expenses"
)

// ChangeEvent describes a mutation that has been applied to the ledger.
type ChangeEvent struct {
	Operation  Operation
	Collection Collection
	Index      int // position affected, -1 when not applicable
	Size       int // collection length after the mutation
	Persisted  bool
}
