// Package core provides money parsing and handling utilities.
//
// This file contains the input-boundary parsers for amounts, budgets and
// dates, and the helpers used to add and render amounts.
package core

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into an expense amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign, so refunds can be recorded as negative amounts.
// Returns ErrInvalidAmount for anything that is not a number.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("twelve") -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// ParseBudget converts user input into a budget limit. Budgets must not
// be negative; 0 means no limit.
func ParseBudget(s string) (float64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: budget limit cannot be negative", ErrInvalidAmount)
	}
	return d.InexactFloat64(), nil
}

// ParseDate validates a YYYY-MM-DD date and returns it unchanged.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return s, nil
}

// ParseMonth validates a YYYY-MM month key and returns it unchanged.
func ParseMonth(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q (want YYYY-MM)", ErrInvalidDate, s)
	}
	return s, nil
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(v float64) string {
	return toDecimal(v).StringFixed(2)
}

// Sum adds amounts without accumulating binary rounding error.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(toDecimal(v))
	}
	return total.InexactFloat64()
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !isFinite(d.InexactFloat64()) {
		return decimal.Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return d, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toDecimal treats NaN and infinities as zero; decimal cannot represent them.
func toDecimal(v float64) decimal.Decimal {
	if !isFinite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
