package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used for expense dates.
const DateLayout = "2006-01-02"

// MonthLayout is the month key format used by monthly reports.
const MonthLayout = "2006-01"

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	KindRegular   Kind = "regular"
	KindRecurring Kind = "recurring"
)

type (
	// Frequency is the repetition period of a recurring expense.
	Frequency string

	// Kind discriminates regular expenses from recurring ones.
	Kind string

	// Expense is a single spending event. Recurring expenses share the
	// same shape and carry Kind == KindRecurring plus a Frequency.
	Expense struct {
		Amount      float64
		Category    string
		Description string
		Date        string // YYYY-MM-DD
		Kind        Kind
		Frequency   Frequency // empty unless Kind == KindRecurring
	}

	// ExpenseUpdate carries the fields to overwrite on an existing expense.
	// Nil fields are left untouched.
	ExpenseUpdate struct {
		Amount      *float64
		Category    *string
		Description *string
		Date        *string
	}

	// Category groups expenses and holds an optional budget ceiling.
	Category struct {
		Name        string
		BudgetLimit float64 // 0 means no limit
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrCorruptStore      = errors.New("corrupt store")
	ErrPersistFailure    = errors.New("persist failure")
)

// Frequencies lists the supported repetition periods.
func Frequencies() []Frequency {
	return []Frequency{Daily, Weekly, Monthly, Yearly}
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// NormalizeFrequency maps any unsupported value to Monthly.
func NormalizeFrequency(s string) Frequency {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return Monthly
	}
	return f
}

// NewExpense builds a regular expense. An empty date defaults to today.
func NewExpense(amount float64, category, description, date string) Expense {
	return Expense{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        defaultDate(date),
		Kind:        KindRegular,
	}
}

// NewRecurringExpense builds a recurring expense with a normalized frequency.
func NewRecurringExpense(amount float64, category, description, date, frequency string) Expense {
	e := NewExpense(amount, category, description, date)
	e.Kind = KindRecurring
	e.Frequency = NormalizeFrequency(frequency)
	return e
}

// NewCategory builds a category; pass 0 for no budget limit.
func NewCategory(name string, budgetLimit float64) Category {
	return Category{Name: name, BudgetLimit: budgetLimit}
}

// IsRecurring reports whether e is the recurring variant.
func (e Expense) IsRecurring() bool {
	return e.Kind == KindRecurring
}

// Apply overwrites the fields set in u and returns the result.
func (e Expense) Apply(u ExpenseUpdate) Expense {
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	return e
}

// IsEmpty reports whether the update sets no field.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Category == nil && u.Description == nil && u.Date == nil
}

// InMonth reports whether the expense date falls in the given YYYY-MM month.
func (e Expense) InMonth(month string) bool {
	return strings.HasPrefix(e.Date, month)
}

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// CurrentMonth returns the current month in MonthLayout.
func CurrentMonth() string {
	return time.Now().Format(MonthLayout)
}

func defaultDate(date string) string {
	if date == "" {
		return Today()
	}
	return date
}
