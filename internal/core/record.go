package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record keys of the flat serialized form.
const (
	KeyAmount      = "amount"
	KeyCategory    = "category"
	KeyDescription = "description"
	KeyDate        = "date"
	KeyType        = "type"
	KeyFrequency   = "frequency"
	KeyName        = "name"
	KeyBudgetLimit = "budget_limit"
)

// Record is the flat key-value representation stores read and write.
type Record map[string]any

// Record converts the expense to its serialized form, tagged with its kind.
func (e Expense) Record() Record {
	r := Record{
		KeyAmount:      e.Amount,
		KeyCategory:    e.Category,
		KeyDescription: e.Description,
		KeyDate:        e.Date,
		KeyType:        string(KindRegular),
	}
	if e.IsRecurring() {
		r[KeyType] = string(KindRecurring)
		r[KeyFrequency] = string(NormalizeFrequency(string(e.Frequency)))
	}
	return r
}

// ExpenseFromRecord rebuilds an expense. A "recurring" type yields the
// recurring variant, anything else a regular expense. Missing or
// ill-typed fields are reported as ErrCorruptStore.
func ExpenseFromRecord(r Record) (Expense, error) {
	amount, err := r.number(KeyAmount)
	if err != nil {
		return Expense{}, err
	}
	category, err := r.text(KeyCategory)
	if err != nil {
		return Expense{}, err
	}
	description, err := r.text(KeyDescription)
	if err != nil {
		return Expense{}, err
	}
	date, err := r.text(KeyDate)
	if err != nil {
		return Expense{}, err
	}

	kind, _ := r[KeyType].(string)
	if Kind(kind) != KindRecurring {
		return NewExpense(amount, category, description, date), nil
	}
	frequency, _ := r[KeyFrequency].(string)
	return NewRecurringExpense(amount, category, description, date, frequency), nil
}

// Record converts the category to its serialized form.
func (c Category) Record() Record {
	return Record{
		KeyName:        c.Name,
		KeyBudgetLimit: c.BudgetLimit,
	}
}

// CategoryFromRecord rebuilds a category from its serialized form.
func CategoryFromRecord(r Record) (Category, error) {
	name, err := r.text(KeyName)
	if err != nil {
		return Category{}, err
	}
	limit, err := r.number(KeyBudgetLimit)
	if err != nil {
		return Category{}, err
	}
	return NewCategory(name, limit), nil
}

func (r Record) text(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrCorruptStore, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrCorruptStore, key, v)
	}
	return s, nil
}

// number coerces numeric fields the way amounts are coerced from input.
func (r Record) number(key string) (float64, error) {
	v, ok := r[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrCorruptStore, key)
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		return coerceNumber(key, n.String())
	case string:
		return coerceNumber(key, n)
	default:
		return 0, fmt.Errorf("%w: field %q is %T, want number", ErrCorruptStore, key, v)
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("%w: field %q is not a finite number", ErrCorruptStore, key)
	}
	return f, nil
}

func coerceNumber(key, s string) (float64, error) {
	d, err := parseDecimal(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrCorruptStore, key, err)
	}
	return d.InexactFloat64(), nil
}
