package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ledger.db")
	s, err := New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestNewSeedsDefaultCategoriesOnce(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t)

	categories, err := s.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories(), categories)

	// Later changes survive reopening; defaults are not seeded again.
	require.NoError(t, s.SaveCategories(ctx, []core.Category{{Name: "Rent", BudgetLimit: 900}}))
	require.NoError(t, s.Close())

	reopened, err := New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	categories, err = reopened.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{Name: "Rent", BudgetLimit: 900}}, categories)
}

func TestSaveAndLoadExpensesKeepsOrderAndKind(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	expenses, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	in := []core.Expense{
		core.NewExpense(12.5, "Travel", "bus", "2024-05-02"),
		core.NewRecurringExpense(99, "Bills", "internet", "2024-05-01", "weekly"),
		core.NewExpense(250, "Food", "", "2024-05-10"),
	}
	require.NoError(t, s.SaveExpenses(ctx, in))

	out, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Saving a shorter collection replaces the table.
	require.NoError(t, s.SaveExpenses(ctx, in[:1]))
	out, err = s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, in[:1], out)
}

func TestLoadExpensesCorruptRow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (position, amount, category, description, date, type) VALUES (0, 'lots', 'Food', '', '2024-05-01', 'regular')`)
	require.NoError(t, err)

	_, err = s.LoadExpenses(ctx)
	assert.ErrorIs(t, err, core.ErrCorruptStore)
}

func TestSaveAfterCloseIsPersistFailure(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())

	err := s.SaveExpenses(context.Background(), []core.Expense{core.NewExpense(1, "Food", "", "2024-01-01")})
	assert.ErrorIs(t, err, core.ErrPersistFailure)
}
