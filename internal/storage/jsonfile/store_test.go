package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "expenses.json"), filepath.Join(dir, "categories.json"))
	require.NoError(t, err)
	return s, dir
}

func TestNewInitializesMissingFiles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	expenses, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	categories, err := s.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultCategories(), categories)
}

func TestNewKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "categories.json")
	require.NoError(t, os.WriteFile(catPath, []byte(`[{"name": "Rent", "budget_limit": 900}]`), 0o644))

	s, err := New(filepath.Join(dir, "expenses.json"), catPath)
	require.NoError(t, err)

	categories, err := s.LoadCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{Name: "Rent", BudgetLimit: 900}}, categories)
}

func TestSaveAndLoadExpenses(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	in := []core.Expense{
		core.NewExpense(250, "Food", "lunch", "2024-05-10"),
		core.NewRecurringExpense(99, "Bills", "phone", "2024-05-01", "yearly"),
	}
	require.NoError(t, s.SaveExpenses(ctx, in))

	out, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	raw, err := os.ReadFile(s.ExpensesPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type": "recurring"`)
	assert.Contains(t, string(raw), `"frequency": "yearly"`)
}

func TestLoadCorruptFiles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, content := range []string{
		"{not json",
		"",
		"null",
		`[{"amount": 1}]`,
		`[{"amount": 5, "category": "Food", "description": "", "date": "2024-05-01"}] }garbage`,
		`[] []`,
		`[{"amount": 1e400, "category": "Food", "description": "", "date": "2024-05-01"}]`,
	} {
		require.NoError(t, os.WriteFile(s.ExpensesPath(), []byte(content), 0o644))
		_, err := s.LoadExpenses(ctx)
		assert.ErrorIs(t, err, core.ErrCorruptStore, "content %q", content)
	}

	require.NoError(t, os.WriteFile(s.CategoriesPath(), []byte(`[{"name": "Food"}]`), 0o644))
	_, err := s.LoadCategories(ctx)
	assert.ErrorIs(t, err, core.ErrCorruptStore)
}

func TestSaveFailureIsPersistFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes every write fail.
	expPath := filepath.Join(dir, "expenses.json")
	require.NoError(t, os.Mkdir(expPath, 0o755))
	s := &Store{expensesPath: expPath, categoriesPath: filepath.Join(dir, "categories.json")}

	err := s.SaveExpenses(context.Background(), []core.Expense{core.NewExpense(1, "Food", "", "2024-01-01")})
	assert.ErrorIs(t, err, core.ErrPersistFailure)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file left behind")
	assert.Equal(t, "expenses.json", entries[0].Name())
}

func TestLoadAcceptsTrailingWhitespace(t *testing.T) {
	s, _ := newTestStore(t)
	content := `[{"amount": 5, "category": "Food", "description": "", "date": "2024-05-01"}]` + "\n\n  "
	require.NoError(t, os.WriteFile(s.ExpensesPath(), []byte(content), 0o644))

	expenses, err := s.LoadExpenses(context.Background())
	require.NoError(t, err)
	assert.Len(t, expenses, 1)
}

func TestSaveReplacesFileInPlace(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestStore(t)

	require.NoError(t, s.SaveExpenses(ctx, []core.Expense{core.NewExpense(1, "Food", "", "2024-01-01")}))
	require.NoError(t, s.SaveExpenses(ctx, []core.Expense{core.NewExpense(2, "Travel", "", "2024-01-02")}))

	out, err := s.LoadExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Travel", out[0].Category)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"expenses.json", "categories.json"}, names)

	info, err := os.Stat(s.ExpensesPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
