// Package ledger owns the in-memory expense and category collections.
//
// Every mutation is applied in memory first and then flushed to the
// configured store before the call returns. A failed flush is reported
// to the caller but never rolled back: the ledger stays ahead of the
// durable copy until a later save of the same collection succeeds.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// Notifier receives an event after each applied mutation.
type Notifier interface {
	Notify(ctx context.Context, ev core.ChangeEvent) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for load, save and recovery messages.
func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger.WithComponent(log.ComponentLedger)
		}
	}
}

// WithNotifier publishes change events to n.
func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		l.notifier = n
	}
}

// Ledger is the single source of truth for expenses and categories.
// It is not safe for concurrent use.
type Ledger struct {
	store    storage.Store
	notifier Notifier
	logger   *log.Logger

	expenses   []core.Expense
	categories []core.Category

	// collections whose last save failed
	unsynced map[core.Collection]bool
}

// Open builds a ledger from the store's current contents.
//
// Corrupt expense data is logged, replaced by an empty collection and
// rewritten so the store heals. Corrupt category data is logged and
// replaced by an empty collection. Any other load error is returned.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: nil store")
	}
	l := &Ledger{
		store:    store,
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
		unsynced: make(map[core.Collection]bool),
	}
	for _, opt := range opts {
		opt(l)
	}

	expenses, err := store.LoadExpenses(ctx)
	switch {
	case errors.Is(err, core.ErrCorruptStore):
		l.logger.ErrorContext(ctx, "Expense store is corrupt, resetting to empty",
			log.FieldError, err,
			log.FieldCollection, core.CollectionExpenses)
		expenses = []core.Expense{}
		l.expenses = expenses
		if err := l.saveExpenses(ctx); err != nil {
			l.logger.ErrorContext(ctx, "Failed to rewrite corrupt expense store", log.FieldError, err)
		}
		l.notify(ctx, core.OpResetExpenses, core.CollectionExpenses, -1)
	case err != nil:
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	l.expenses = expenses

	categories, err := store.LoadCategories(ctx)
	switch {
	case errors.Is(err, core.ErrCorruptStore):
		l.logger.ErrorContext(ctx, "Category store is corrupt, resetting to empty",
			log.FieldError, err,
			log.FieldCollection, core.CollectionCategories)
		categories = []core.Category{}
	case err != nil:
		return nil, fmt.Errorf("load categories: %w", err)
	}
	l.categories = categories

	l.logger.DebugContext(ctx, "Ledger opened",
		"expenses", len(l.expenses),
		"categories", len(l.categories))
	return l, nil
}

// AddExpense appends e and persists the expense collection.
func (l *Ledger) AddExpense(ctx context.Context, e core.Expense) error {
	if e.Kind == "" {
		e.Kind = core.KindRegular
	}
	l.expenses = append(l.expenses, e)
	index := len(l.expenses) - 1
	l.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithExpense(index, e.Category, e.Amount).ToSlice()...)
	return l.commitExpenses(ctx, core.OpAddExpense, index)
}

// DeleteExpense removes and returns the expense at index.
func (l *Ledger) DeleteExpense(ctx context.Context, index int) (core.Expense, error) {
	if err := checkIndex(index, len(l.expenses)); err != nil {
		return core.Expense{}, fmt.Errorf("delete expense: %w", err)
	}
	removed := l.expenses[index]
	l.expenses = slices.Delete(l.expenses, index, index+1)
	l.logger.InfoContext(ctx, "Expense deleted",
		log.NewFields().WithExpense(index, removed.Category, removed.Amount).ToSlice()...)
	return removed, l.commitExpenses(ctx, core.OpDeleteExpense, index)
}

// UpdateExpense overwrites the fields set in u on the expense at index.
func (l *Ledger) UpdateExpense(ctx context.Context, index int, u core.ExpenseUpdate) error {
	if err := checkIndex(index, len(l.expenses)); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	l.expenses[index] = l.expenses[index].Apply(u)
	l.logger.InfoContext(ctx, "Expense updated", log.FieldIndex, index)
	return l.commitExpenses(ctx, core.OpUpdateExpense, index)
}

// Expenses returns a copy of all expenses in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	return slices.Clone(l.expenses)
}

// Expense returns the expense at index.
func (l *Ledger) Expense(index int) (core.Expense, error) {
	if err := checkIndex(index, len(l.expenses)); err != nil {
		return core.Expense{}, err
	}
	return l.expenses[index], nil
}

// Len returns the number of expenses.
func (l *Ledger) Len() int {
	return len(l.expenses)
}

// ExpensesByCategory returns the expenses whose category equals name exactly.
func (l *Ledger) ExpensesByCategory(name string) []core.Expense {
	return core.FilterByCategory(l.expenses, name)
}

// TotalSpending sums every expense amount.
func (l *Ledger) TotalSpending() float64 {
	return core.Total(l.expenses)
}

// CategorySummary totals amounts per category, in order of first appearance.
func (l *Ledger) CategorySummary() []core.CategoryAmount {
	return core.Summarize(l.expenses)
}

// CategoryTotal sums the expenses filed under name, 0 when there are none.
func (l *Ledger) CategoryTotal(name string) float64 {
	return core.Total(core.FilterByCategory(l.expenses, name))
}

// AddCategory appends a new category. Names are unique ignoring case.
func (l *Ledger) AddCategory(ctx context.Context, name string, budgetLimit float64) error {
	for _, c := range l.categories {
		if strings.EqualFold(c.Name, name) {
			l.logger.WarnContext(ctx, "Category already exists", log.FieldCategory, name)
			return fmt.Errorf("add category %q: %w", name, core.ErrDuplicateCategory)
		}
	}
	l.categories = append(l.categories, core.NewCategory(name, budgetLimit))
	index := len(l.categories) - 1
	l.logger.InfoContext(ctx, "Category added", log.FieldCategory, name, "budget_limit", budgetLimit)
	return l.commitCategories(ctx, core.OpAddCategory, index)
}

// UpdateCategoryBudget sets the budget limit of the category at index.
func (l *Ledger) UpdateCategoryBudget(ctx context.Context, index int, limit float64) error {
	if err := checkIndex(index, len(l.categories)); err != nil {
		return fmt.Errorf("update category budget: %w", err)
	}
	l.categories[index].BudgetLimit = limit
	l.logger.InfoContext(ctx, "Category budget updated",
		log.FieldCategory, l.categories[index].Name,
		"budget_limit", limit)
	return l.commitCategories(ctx, core.OpUpdateBudget, index)
}

// Categories returns a copy of all categories in order.
func (l *Ledger) Categories() []core.Category {
	return slices.Clone(l.categories)
}

// CategoryNames returns the category names in order.
func (l *Ledger) CategoryNames() []string {
	names := make([]string, len(l.categories))
	for i, c := range l.categories {
		names[i] = c.Name
	}
	return names
}

// ResolveCategory maps user input to a category name: a 1-based number
// picks that category, an exact name is kept, and anything else falls
// back to core.FallbackCategory.
func (l *Ledger) ResolveCategory(input string) string {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(l.categories) {
			return l.categories[n-1].Name
		}
		return core.FallbackCategory
	}
	for _, c := range l.categories {
		if c.Name == input {
			return c.Name
		}
	}
	return core.FallbackCategory
}

// Unsynced reports whether some in-memory change has not reached the store.
func (l *Ledger) Unsynced() bool {
	for _, pending := range l.unsynced {
		if pending {
			return true
		}
	}
	return false
}

func (l *Ledger) commitExpenses(ctx context.Context, op core.Operation, index int) error {
	err := l.saveExpenses(ctx)
	l.notify(ctx, op, core.CollectionExpenses, index)
	return err
}

func (l *Ledger) commitCategories(ctx context.Context, op core.Operation, index int) error {
	err := l.saveCategories(ctx)
	l.notify(ctx, op, core.CollectionCategories, index)
	return err
}

func (l *Ledger) saveExpenses(ctx context.Context) error {
	return l.track(ctx, core.CollectionExpenses, l.store.SaveExpenses(ctx, l.expenses))
}

func (l *Ledger) saveCategories(ctx context.Context) error {
	return l.track(ctx, core.CollectionCategories, l.store.SaveCategories(ctx, l.categories))
}

// track records the outcome of a save. The in-memory change is kept either way.
func (l *Ledger) track(ctx context.Context, c core.Collection, err error) error {
	if err == nil {
		l.unsynced[c] = false
		return nil
	}
	l.unsynced[c] = true
	if !errors.Is(err, core.ErrPersistFailure) {
		err = fmt.Errorf("%w: %v", core.ErrPersistFailure, err)
	}
	l.logger.ErrorContext(ctx, "Change applied in memory but not persisted",
		log.FieldCollection, c,
		log.FieldError, err)
	return fmt.Errorf("save %s: %w", c, err)
}

func (l *Ledger) notify(ctx context.Context, op core.Operation, c core.Collection, index int) {
	if l.notifier == nil {
		return
	}
	size := len(l.expenses)
	if c == core.CollectionCategories {
		size = len(l.categories)
	}
	ev := core.ChangeEvent{
		Operation:  op,
		Collection: c,
		Index:      index,
		Size:       size,
		Persisted:  !l.unsynced[c],
	}
	if err := l.notifier.Notify(ctx, ev); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldOperation, op,
			log.FieldError, err)
	}
}

func checkIndex(index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %d (have %d)", core.ErrIndexOutOfRange, index, n)
	}
	return nil
}
