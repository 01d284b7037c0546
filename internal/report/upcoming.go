package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/recurring"
)

// Due is a recurring expense paired with its next due date.
type Due struct {
	Expense core.Expense
	Next    time.Time
}

// Upcoming lists recurring expenses by the next date they fall due.
type Upcoming struct {
	expenses []core.Expense
	from     time.Time
	opts     options
}

var _ Generator = (*Upcoming)(nil)

// NewUpcoming builds the report for occurrences on or after from. A zero
// from means today.
func NewUpcoming(expenses []core.Expense, from time.Time, opts ...Option) *Upcoming {
	if from.IsZero() {
		from = time.Now()
	}
	return &Upcoming{
		expenses: slices.Clone(expenses),
		from:     from,
		opts:     buildOptions(opts),
	}
}

// Items returns recurring expenses sorted by next due date. Expenses
// with an unparseable date are left out.
func (u *Upcoming) Items() []Due {
	var out []Due
	for _, e := range u.expenses {
		if !e.IsRecurring() {
			continue
		}
		next, err := recurring.NextDue(e, u.from)
		if err != nil {
			continue
		}
		out = append(out, Due{Expense: e, Next: next})
	}
	slices.SortStableFunc(out, func(a, b Due) int {
		return a.Next.Compare(b.Next)
	})
	return out
}

// Generate renders one line per recurring expense.
func (u *Upcoming) Generate() string {
	var b strings.Builder
	writeHeader(&b, "Upcoming Recurring Expenses from "+u.from.Format(core.DateLayout))
	items := u.Items()
	if len(items) == 0 {
		b.WriteString("  No recurring expenses\n")
		return b.String()
	}
	for _, d := range items {
		fmt.Fprintf(&b, "  %s  %s: %s (%s)",
			d.Next.Format(core.DateLayout), d.Expense.Category,
			u.opts.money(d.Expense.Amount), d.Expense.Frequency)
		if d.Expense.Description != "" {
			b.WriteString(" " + d.Expense.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
