package report

import (
	"fmt"
	"slices"
	"strings"

	"ledger/internal/core"
)

// Monthly summarizes the expenses dated within one calendar month.
type Monthly struct {
	month    string
	expenses []core.Expense
	opts     options
}

var _ Generator = (*Monthly)(nil)

// NewMonthly builds a report for month (YYYY-MM). An empty month means
// the current one.
func NewMonthly(expenses []core.Expense, month string, opts ...Option) *Monthly {
	if month == "" {
		month = core.CurrentMonth()
	}
	return &Monthly{
		month:    month,
		expenses: slices.Clone(expenses),
		opts:     buildOptions(opts),
	}
}

// Month returns the month key the report covers.
func (m *Monthly) Month() string {
	return m.month
}

// Overview returns the month total and per-category subtotals.
func (m *Monthly) Overview() core.MonthOverview {
	inMonth := core.FilterByMonth(m.expenses, m.month)
	return core.MonthOverview{
		Month:      m.month,
		Total:      core.Total(inMonth),
		ByCategory: core.Summarize(inMonth),
	}
}

// Generate renders the month label, grand total and category breakdown.
func (m *Monthly) Generate() string {
	ov := m.Overview()

	var b strings.Builder
	writeHeader(&b, "Monthly Report for "+ov.Month)
	fmt.Fprintf(&b, "Total Expenses: %s\n", m.opts.money(ov.Total))
	b.WriteString("Category Breakdown:\n")
	for _, c := range ov.ByCategory {
		fmt.Fprintf(&b, "  %s: %s\n", c.Name, m.opts.money(c.Amount))
	}
	return b.String()
}
