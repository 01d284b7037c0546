package report

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"ledger/internal/core"
)

// BudgetState classifies spending against a category's limit.
type BudgetState string

const (
	BudgetUnlimited BudgetState = "unlimited"
	BudgetWithin    BudgetState = "within"
	BudgetOver      BudgetState = "over"
)

// BudgetStatus is the spend of one category compared to its limit.
type BudgetStatus struct {
	Category  string
	Spent     float64
	Limit     float64
	Remaining float64 // Limit - Spent; negative when over budget, 0 when unlimited
	State     BudgetState
}

// Overrun returns how far spending exceeds the limit, 0 when it does not.
func (s BudgetStatus) Overrun() float64 {
	if s.State != BudgetOver {
		return 0
	}
	return math.Abs(s.Remaining)
}

// CategoryBudget compares each category's spending with its budget.
type CategoryBudget struct {
	expenses   []core.Expense
	categories []core.Category
	opts       options
}

var _ Generator = (*CategoryBudget)(nil)

// NewCategoryBudget builds a budget report over a snapshot of the data.
func NewCategoryBudget(expenses []core.Expense, categories []core.Category, opts ...Option) *CategoryBudget {
	return &CategoryBudget{
		expenses:   slices.Clone(expenses),
		categories: slices.Clone(categories),
		opts:       buildOptions(opts),
	}
}

// Statuses returns one entry per category, in category order. Expenses
// are matched to categories by exact name.
func (r *CategoryBudget) Statuses() []BudgetStatus {
	out := make([]BudgetStatus, 0, len(r.categories))
	for _, c := range r.categories {
		spent := core.Total(core.FilterByCategory(r.expenses, c.Name))
		s := BudgetStatus{
			Category: c.Name,
			Spent:    spent,
			Limit:    c.BudgetLimit,
			State:    BudgetUnlimited,
		}
		if c.BudgetLimit > 0 {
			s.Remaining = core.Sum(c.BudgetLimit, -spent)
			s.State = BudgetWithin
			if s.Remaining < 0 {
				s.State = BudgetOver
			}
		}
		out = append(out, s)
	}
	return out
}

// Generate renders spent and limit for every category. Categories with a
// limit also get a remaining or over-budget line.
func (r *CategoryBudget) Generate() string {
	var b strings.Builder
	writeHeader(&b, "Category-wise Report")
	for _, s := range r.Statuses() {
		fmt.Fprintf(&b, "\n%s:\n", s.Category)
		fmt.Fprintf(&b, "  Total Spent: %s\n", r.opts.money(s.Spent))
		fmt.Fprintf(&b, "  Budget Limit: %s\n", r.opts.money(s.Limit))
		switch s.State {
		case BudgetWithin:
			fmt.Fprintf(&b, "  Remaining: %s [OK]\n", r.opts.money(s.Remaining))
		case BudgetOver:
			fmt.Fprintf(&b, "  Over Budget: %s [OVER]\n", r.opts.money(s.Overrun()))
		}
	}
	return b.String()
}
