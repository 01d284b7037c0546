// Package sqlite persists the ledger in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"

	_ "modernc.org/sqlite"
)

const metaCategoriesSeeded = "categories_seeded"

const (
	selectExpensesSQL = `SELECT amount, category, description, date, type, frequency
		FROM expenses ORDER BY position`
	insertExpenseSQL = `INSERT INTO expenses (position, amount, category, description, date, type, frequency)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectCategoriesSQL = `SELECT name, budget_limit FROM categories ORDER BY position`
	insertCategorySQL   = `INSERT INTO categories (position, name, budget_limit) VALUES (?, ?, ?)`
)

// Store keeps both collections in one database file.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath, applies migrations and
// seeds the default categories on first use.
func New(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer, single process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.seed(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadExpenses implements storage.ExpenseStore.
func (s *Store) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, selectExpensesSQL)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var amount float64
		var category, description, date, kind string
		var frequency sql.NullString
		if err := rows.Scan(&amount, &category, &description, &date, &kind, &frequency); err != nil {
			return nil, storage.Corrupt("expenses table", err)
		}
		r := core.Record{
			core.KeyAmount:      amount,
			core.KeyCategory:    category,
			core.KeyDescription: description,
			core.KeyDate:        date,
			core.KeyType:        kind,
		}
		if frequency.Valid {
			r[core.KeyFrequency] = frequency.String
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	expenses, err := storage.DecodeExpenses(records)
	if err != nil {
		return nil, err
	}
	log.FromContext(ctx).DebugContext(ctx, "Loaded expenses from SQLite", "count", len(expenses), "path", s.path)
	return expenses, nil
}

// SaveExpenses implements storage.ExpenseStore.
func (s *Store) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	err := s.replace(ctx, "expenses", insertExpenseSQL, len(expenses), func(i int) []any {
		e := expenses[i]
		var frequency any
		if e.IsRecurring() {
			frequency = string(core.NormalizeFrequency(string(e.Frequency)))
		}
		kind := core.KindRegular
		if e.IsRecurring() {
			kind = core.KindRecurring
		}
		return []any{i, e.Amount, e.Category, e.Description, e.Date, string(kind), frequency}
	})
	if err != nil {
		return storage.PersistFailure(s.path, err)
	}
	log.FromContext(ctx).DebugContext(ctx, "Saved expenses to SQLite", "count", len(expenses))
	return nil
}

// LoadCategories implements storage.CategoryStore.
func (s *Store) LoadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, selectCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			name  string
			limit float64
		)
		if err := rows.Scan(&name, &limit); err != nil {
			return nil, storage.Corrupt("categories table", err)
		}
		records = append(records, core.Record{core.KeyName: name, core.KeyBudgetLimit: limit})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	categories, err := storage.DecodeCategories(records)
	if err != nil {
		return nil, err
	}
	log.FromContext(ctx).DebugContext(ctx, "Loaded categories from SQLite", "count", len(categories), "path", s.path)
	return categories, nil
}

// SaveCategories implements storage.CategoryStore.
func (s *Store) SaveCategories(ctx context.Context, categories []core.Category) error {
	err := s.replace(ctx, "categories", insertCategorySQL, len(categories), func(i int) []any {
		return []any{i, categories[i].Name, categories[i].BudgetLimit}
	})
	if err != nil {
		return storage.PersistFailure(s.path, err)
	}
	log.FromContext(ctx).DebugContext(ctx, "Saved categories to SQLite", "count", len(categories))
	return nil
}

// replace rewrites a whole table inside one transaction.
func (s *Store) replace(ctx context.Context, table, insertSQL string, n int, args func(i int) []any) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err = stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("insert into %s row %d: %w", table, i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// seed writes the default categories the first time the database is used.
func (s *Store) seed(ctx context.Context) error {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, metaCategoriesSeeded).Scan(&value)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read store metadata: %w", err)
	}

	defaults := core.DefaultCategories()
	if err := s.SaveCategories(ctx, defaults); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO store_meta (key, value) VALUES (?, ?)`, metaCategoriesSeeded, "1"); err != nil {
		return fmt.Errorf("write store metadata: %w", err)
	}
	log.FromContext(ctx).InfoContext(ctx, "Seeded default categories", "count", len(defaults), "path", s.path)
	return nil
}
