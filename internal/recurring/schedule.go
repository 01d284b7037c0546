// Package recurring computes when a recurring expense next falls due.
//
// Each frequency has its own Scheduler. The registry lets new
// frequencies plug in without touching the existing ones.
package recurring

import (
	"fmt"
	"time"

	"ledger/internal/core"
)

// Scheduler computes occurrences for one frequency.
type Scheduler interface {
	// Next returns the first occurrence on or after from for a series
	// anchored at start. Both are treated as calendar dates.
	Next(start, from time.Time) time.Time
}

// DailyScheduler repeats every day from start.
type DailyScheduler struct{}

// Next returns from, or start when the series has not begun yet.
func (DailyScheduler) Next(start, from time.Time) time.Time {
	start, from = day(start), day(from)
	if from.Before(start) {
		return start
	}
	return from
}

// WeeklyScheduler repeats every seven days from start.
type WeeklyScheduler struct{}

// Next rounds the distance from start up to a whole number of weeks.
func (WeeklyScheduler) Next(start, from time.Time) time.Time {
	start, from = day(start), day(from)
	if !from.After(start) {
		return start
	}
	days := int(from.Sub(start).Hours() / 24)
	weeks := (days + 6) / 7
	return start.AddDate(0, 0, weeks*7)
}

// MonthlyScheduler repeats on the start day of every month. Months
// shorter than that day use their last day.
type MonthlyScheduler struct{}

// Next returns the occurrence in from's month, or the following month's
// if that one has already passed.
func (MonthlyScheduler) Next(start, from time.Time) time.Time {
	start, from = day(start), day(from)
	if !from.After(start) {
		return start
	}
	candidate := clamp(from.Year(), from.Month(), start.Day())
	if candidate.Before(from) {
		next := from.AddDate(0, 0, 1-from.Day()).AddDate(0, 1, 0)
		candidate = clamp(next.Year(), next.Month(), start.Day())
	}
	return candidate
}

// YearlyScheduler repeats on the start month and day every year.
// February 29 falls back to February 28 in common years.
type YearlyScheduler struct{}

// Next returns the occurrence in from's year, or the following year's
// if that one has already passed.
func (YearlyScheduler) Next(start, from time.Time) time.Time {
	start, from = day(start), day(from)
	if !from.After(start) {
		return start
	}
	candidate := clamp(from.Year(), start.Month(), start.Day())
	if candidate.Before(from) {
		candidate = clamp(from.Year()+1, start.Month(), start.Day())
	}
	return candidate
}

// schedulers maps frequencies to their scheduler.
var schedulers = map[core.Frequency]Scheduler{
	core.Daily:   DailyScheduler{},
	core.Weekly:  WeeklyScheduler{},
	core.Monthly: MonthlyScheduler{},
	core.Yearly:  YearlyScheduler{},
}

// SchedulerFor returns the scheduler registered for a frequency.
func SchedulerFor(f core.Frequency) (Scheduler, error) {
	s, ok := schedulers[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return s, nil
}

// Register adds or replaces the scheduler for a frequency.
func Register(f core.Frequency, s Scheduler) {
	schedulers[f] = s
}

// NextDue returns the next date a recurring expense falls due on or
// after from. The expense date is the anchor of the series.
func NextDue(e core.Expense, from time.Time) (time.Time, error) {
	if !e.IsRecurring() {
		return time.Time{}, fmt.Errorf("expense is not recurring")
	}
	start, err := time.Parse(core.DateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, e.Date)
	}
	s, err := SchedulerFor(core.NormalizeFrequency(string(e.Frequency)))
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(start, from), nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clamp builds the date, using the month's last day when d overflows it.
func clamp(y int, m time.Month, d int) time.Time {
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
