// Package jsonfile persists the ledger as two human-readable JSON files,
// one array of records per collection.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

const (
	DefaultExpensesFile   = "expenses.json"
	DefaultCategoriesFile = "categories.json"
)

// Store reads and writes the expense and category files.
type Store struct {
	expensesPath   string
	categoriesPath string
}

var _ storage.Store = (*Store)(nil)

// New opens the store, creating missing files: the expense file as an
// empty array and the category file with the default categories.
func New(expensesPath, categoriesPath string) (*Store, error) {
	if expensesPath == "" {
		expensesPath = DefaultExpensesFile
	}
	if categoriesPath == "" {
		categoriesPath = DefaultCategoriesFile
	}
	s := &Store{expensesPath: expensesPath, categoriesPath: categoriesPath}

	if err := initFile(expensesPath, []core.Record{}); err != nil {
		return nil, fmt.Errorf("initialize expenses file: %w", err)
	}
	if err := initFile(categoriesPath, storage.EncodeCategories(core.DefaultCategories())); err != nil {
		return nil, fmt.Errorf("initialize categories file: %w", err)
	}
	return s, nil
}

// ExpensesPath returns the path of the expense file.
func (s *Store) ExpensesPath() string { return s.expensesPath }

// CategoriesPath returns the path of the category file.
func (s *Store) CategoriesPath() string { return s.categoriesPath }

// LoadExpenses implements storage.ExpenseStore.
func (s *Store) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	records, err := readRecords(s.expensesPath)
	if err != nil {
		return nil, err
	}
	expenses, err := storage.DecodeExpenses(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.expensesPath, err)
	}
	log.FromContext(ctx).DebugContext(ctx, "Loaded expenses", "count", len(expenses), "path", s.expensesPath)
	return expenses, nil
}

// SaveExpenses implements storage.ExpenseStore.
func (s *Store) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	if err := writeRecords(s.expensesPath, storage.EncodeExpenses(expenses)); err != nil {
		return err
	}
	log.FromContext(ctx).DebugContext(ctx, "Saved expenses", "count", len(expenses), "path", s.expensesPath)
	return nil
}

// LoadCategories implements storage.CategoryStore.
func (s *Store) LoadCategories(ctx context.Context) ([]core.Category, error) {
	records, err := readRecords(s.categoriesPath)
	if err != nil {
		return nil, err
	}
	categories, err := storage.DecodeCategories(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.categoriesPath, err)
	}
	log.FromContext(ctx).DebugContext(ctx, "Loaded categories", "count", len(categories), "path", s.categoriesPath)
	return categories, nil
}

// SaveCategories implements storage.CategoryStore.
func (s *Store) SaveCategories(ctx context.Context, categories []core.Category) error {
	if err := writeRecords(s.categoriesPath, storage.EncodeCategories(categories)); err != nil {
		return err
	}
	log.FromContext(ctx).DebugContext(ctx, "Saved categories", "count", len(categories), "path", s.categoriesPath)
	return nil
}

func initFile(path string, records []core.Record) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	if err := writeRecords(path, records); err != nil {
		return err
	}
	slog.Info("Created new data file", "path", path, "records", len(records))
	return nil
}

func readRecords(path string) ([]core.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []core.Record
	if err := dec.Decode(&records); err != nil {
		return nil, storage.Corrupt(path, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, storage.Corrupt(path, errors.New("trailing data after array"))
	}
	if records == nil {
		return nil, storage.Corrupt(path, errors.New("top-level value is not an array"))
	}
	for i, r := range records {
		if r == nil {
			return nil, storage.Corrupt(path, fmt.Errorf("record %d is null", i))
		}
	}
	return records, nil
}

func writeRecords(path string, records []core.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return storage.PersistFailure(path, err)
	}
	data = append(data, '\n')
	if err := replaceFile(path, data); err != nil {
		return storage.PersistFailure(path, err)
	}
	return nil
}

// replaceFile writes data next to path and renames it into place, so the
// old contents survive a failed write.
func replaceFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
