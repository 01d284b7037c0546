package storage

import (
	"context"

	"ledger/internal/core"
)

// Ports for the persistence adapters.
type (
	// ExpenseStore persists the ordered expense collection.
	ExpenseStore interface {
		// LoadExpenses returns the stored expenses in insertion order.
		// Unparseable data is reported with an error wrapping core.ErrCorruptStore.
		LoadExpenses(ctx context.Context) ([]core.Expense, error)
		// SaveExpenses replaces the stored collection. Failures wrap core.ErrPersistFailure.
		SaveExpenses(ctx context.Context, expenses []core.Expense) error
	}

	// CategoryStore persists the ordered category collection.
	CategoryStore interface {
		LoadCategories(ctx context.Context) ([]core.Category, error)
		SaveCategories(ctx context.Context, categories []core.Category) error
	}

	// Store is the full persistence contract used by the ledger.
	Store interface {
		ExpenseStore
		CategoryStore
	}
)

// DecodeExpenses converts serialized records, stopping at the first bad one.
func DecodeExpenses(records []core.Record) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(records))
	for i, r := range records {
		e, err := core.ExpenseFromRecord(r)
		if err != nil {
			return nil, fmtRecordErr("expense", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// DecodeCategories converts serialized records, stopping at the first bad one.
func DecodeCategories(records []core.Record) ([]core.Category, error) {
	out := make([]core.Category, 0, len(records))
	for i, r := range records {
		c, err := core.CategoryFromRecord(r)
		if err != nil {
			return nil, fmtRecordErr("category", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// EncodeExpenses converts expenses to serialized records.
func EncodeExpenses(expenses []core.Expense) []core.Record {
	out := make([]core.Record, len(expenses))
	for i, e := range expenses {
		out[i] = e.Record()
	}
	return out
}

// EncodeCategories converts categories to serialized records.
func EncodeCategories(categories []core.Category) []core.Record {
	out := make([]core.Record, len(categories))
	for i, c := range categories {
		out[i] = c.Record()
	}
	return out
}
