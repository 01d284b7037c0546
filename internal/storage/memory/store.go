package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// Store keeps serialized records in process memory. Loads decode fresh
// copies, so callers never share state with the store.
type Store struct {
	expenses   []core.Record
	categories []core.Record

	// FailSaves makes every save fail with core.ErrPersistFailure. It is
	// meant for tests that exercise persist-failure handling and is never
	// set by the backend factory.
	FailSaves bool
}

var _ storage.Store = (*Store)(nil)

// New returns a store holding no expenses and the given categories.
func New(categories []core.Category) *Store {
	return &Store{
		expenses:   []core.Record{},
		categories: storage.EncodeCategories(dedupe(categories)),
	}
}

// NewDefault returns a store seeded with the default categories.
func NewDefault() *Store {
	return New(core.DefaultCategories())
}

// NewFromFiles seeds category names from base/seed_categories.txt, one
// per line with an optional budget after a comma. Missing or empty files
// fall back to the default categories.
func NewFromFiles(base string) *Store {
	cats := readCategories(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = core.DefaultCategories()
	}
	return New(cats)
}

// LoadExpenses implements storage.ExpenseStore.
func (s *Store) LoadExpenses(_ context.Context) ([]core.Expense, error) {
	return storage.DecodeExpenses(s.expenses)
}

// SaveExpenses implements storage.ExpenseStore.
func (s *Store) SaveExpenses(_ context.Context, expenses []core.Expense) error {
	if s.FailSaves {
		return storage.PersistFailure("memory", os.ErrPermission)
	}
	s.expenses = storage.EncodeExpenses(expenses)
	return nil
}

// LoadCategories implements storage.CategoryStore.
func (s *Store) LoadCategories(_ context.Context) ([]core.Category, error) {
	return storage.DecodeCategories(s.categories)
}

// SaveCategories implements storage.CategoryStore.
func (s *Store) SaveCategories(_ context.Context, categories []core.Category) error {
	if s.FailSaves {
		return storage.PersistFailure("memory", os.ErrPermission)
	}
	s.categories = storage.EncodeCategories(categories)
	return nil
}

// PutExpenseRecords replaces the raw expense records, bypassing decoding.
func (s *Store) PutExpenseRecords(records []core.Record) {
	s.expenses = records
}

// PutCategoryRecords replaces the raw category records, bypassing decoding.
func (s *Store) PutCategoryRecords(records []core.Record) {
	s.categories = records
}

func readCategories(path string) []core.Category {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, budget, _ := strings.Cut(line, ",")
		limit, err := core.ParseBudget(budget)
		if err != nil {
			limit = 0
		}
		out = append(out, core.NewCategory(strings.TrimSpace(name), limit))
	}
	return dedupe(out)
}

// dedupe drops blank names and case-insensitive repeats, keeping input order.
func dedupe(in []core.Category) []core.Category {
	seen := map[string]struct{}{}
	out := make([]core.Category, 0, len(in))
	for _, c := range in {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
