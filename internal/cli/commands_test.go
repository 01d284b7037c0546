package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/storage/memory"
)

func newTestCommands(t *testing.T) (*Commands, *bytes.Buffer, *memory.Store) {
	t.Helper()
	store := memory.NewDefault()
	l, err := ledger.Open(context.Background(), store, ledger.WithLogger(log.Discard()))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return &Commands{
		Ledger: l,
		Out:    out,
		Now:    func() time.Time { return time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC) },
	}, out, store
}

func run(t *testing.T, c *Commands, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, c.Run(context.Background(), args))
	return out.String()
}

func TestAddAndMonthlyReport(t *testing.T) {
	c, out, store := newTestCommands(t)

	got := run(t, c, out, "add", "-amount", "250", "-category", "Food", "-desc", "lunch", "-date", "2024-05-10")
	assert.Equal(t, "Added expense #1: Food 250.00 on 2024-05-10\n", got)

	stored, err := store.LoadExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)

	got = run(t, c, out, "summary")
	assert.Equal(t, "Total Spending: 250.00\nCategory Summary:\n  Food: 250.00\n", got)

	got = run(t, c, out, "report", "monthly")
	assert.Contains(t, got, "Monthly Report for 2024-05\n")
	assert.Contains(t, got, "Total Expenses: 250.00\n")
	assert.Contains(t, got, "  Food: 250.00\n")
}

func TestAddResolvesCategoryNumbersAndFallback(t *testing.T) {
	c, out, _ := newTestCommands(t)

	run(t, c, out, "add", "-amount", "12,50", "-category", "2", "-date", "2024-05-01")
	run(t, c, out, "add", "-amount", "3", "-category", "Groceries", "-date", "2024-05-02")

	expenses := c.Ledger.Expenses()
	require.Len(t, expenses, 2)
	assert.Equal(t, "Travel", expenses[0].Category)
	assert.Equal(t, 12.5, expenses[0].Amount)
	assert.Equal(t, core.FallbackCategory, expenses[1].Category)
}

func TestAddRecurring(t *testing.T) {
	c, out, _ := newTestCommands(t)

	run(t, c, out, "add", "-amount", "99", "-category", "Bills", "-date", "2024-05-01", "-recurring", "-frequency", "biweekly")

	e, err := c.Ledger.Expense(0)
	require.NoError(t, err)
	assert.True(t, e.IsRecurring())
	assert.Equal(t, core.Monthly, e.Frequency)

	got := run(t, c, out, "report", "upcoming", "-from", "2024-05-15")
	assert.Contains(t, got, "2024-06-01  Bills: 99.00 (monthly)")
}

func TestAddRejectsBadInput(t *testing.T) {
	c, _, _ := newTestCommands(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Run(ctx, []string{"add", "-amount", "lots"}), core.ErrInvalidAmount)
	assert.ErrorIs(t, c.Run(ctx, []string{"add", "-amount", "1e400"}), core.ErrInvalidAmount)
	assert.ErrorIs(t, c.Run(ctx, []string{"add", "-amount", "1", "-date", "10/05/2024"}), core.ErrInvalidDate)
	assert.ErrorIs(t, c.Run(ctx, []string{"add"}), ErrUsage)
	assert.Equal(t, 0, c.Ledger.Len())
}

func TestListEditDelete(t *testing.T) {
	c, out, _ := newTestCommands(t)
	run(t, c, out, "add", "-amount", "10", "-category", "Food", "-desc", "a", "-date", "2024-04-01")
	run(t, c, out, "add", "-amount", "20", "-category", "Travel", "-desc", "b", "-date", "2024-05-01")

	got := run(t, c, out, "list", "-month", "2024-05")
	assert.Contains(t, got, "Travel")
	assert.NotContains(t, got, "Food")

	run(t, c, out, "edit", "-n", "2", "-amount", "25", "-desc", "bus")
	e, err := c.Ledger.Expense(1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, e.Amount)
	assert.Equal(t, "bus", e.Description)
	assert.Equal(t, "Travel", e.Category)

	assert.ErrorIs(t, c.Run(context.Background(), []string{"edit", "-n", "2"}), ErrUsage)
	assert.ErrorIs(t, c.Run(context.Background(), []string{"delete", "-n", "3"}), core.ErrIndexOutOfRange)

	got = run(t, c, out, "delete", "-n", "1")
	assert.Equal(t, "Deleted expense #1: Food 10.00\n", got)
	assert.Equal(t, 1, c.Ledger.Len())

	got = run(t, c, out, "list", "-category", "Food")
	assert.Equal(t, "No expenses recorded.\n", got)
}

func TestCategoriesCommands(t *testing.T) {
	c, out, _ := newTestCommands(t)

	run(t, c, out, "categories", "add", "-name", "Rent", "-budget", "900")
	err := c.Run(context.Background(), []string{"categories", "add", "-name", "rent"})
	assert.ErrorIs(t, err, core.ErrDuplicateCategory)
	assert.ErrorIs(t, c.Run(context.Background(), []string{"categories", "add", "-name", "Gym", "-budget", "-5"}), core.ErrInvalidAmount)

	run(t, c, out, "categories", "budget", "-n", "8", "-limit", "0")
	got := run(t, c, out, "categories")
	assert.Contains(t, got, "Rent")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[8], "unlimited")

	got = run(t, c, out, "report", "category")
	assert.Contains(t, got, "\nRent:\n  Total Spent: 0.00\n  Budget Limit: 900.00\n  Remaining: 900.00 [OK]\n")
}

func TestPersistFailureIsReportedAfterApplying(t *testing.T) {
	c, out, store := newTestCommands(t)
	store.FailSaves = true

	err := c.Run(context.Background(), []string{"add", "-amount", "5", "-date", "2024-05-01"})
	assert.ErrorIs(t, err, core.ErrPersistFailure)
	assert.Contains(t, out.String(), "Added expense #1")
	assert.True(t, c.Ledger.Unsynced())
}

func TestUnknownCommand(t *testing.T) {
	c, out, _ := newTestCommands(t)
	assert.ErrorIs(t, c.Run(context.Background(), []string{"frobnicate"}), ErrUsage)
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
	assert.ErrorIs(t, c.Run(context.Background(), nil), ErrUsage)
	assert.ErrorIs(t, c.Run(context.Background(), []string{"report", "weekly"}), ErrUsage)
}

type fakeEvents struct {
	messages []*amqp.LedgerEventMessage
}

func (f *fakeEvents) ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEventMessage) error) error {
	for _, m := range f.messages {
		if err := handler(m); err != nil {
			return err
		}
	}
	return context.Canceled
}

func TestWatch(t *testing.T) {
	c, out, _ := newTestCommands(t)

	assert.Error(t, c.Run(context.Background(), []string{"watch"}))

	msg := amqp.NewLedgerEventMessage(core.ChangeEvent{
		Operation:  core.OpAddExpense,
		Collection: core.CollectionExpenses,
		Index:      0,
		Size:       1,
		Persisted:  true,
	})
	c.Events = &fakeEvents{messages: []*amqp.LedgerEventMessage{msg}}

	got := run(t, c, out, "watch")
	assert.Contains(t, got, "add_expense")
	assert.Contains(t, got, "index=0 size=1 persisted=true")
}

func TestUsageHelper(t *testing.T) {
	assert.NoError(t, usage(flag.ErrHelp))
	assert.ErrorIs(t, usage(errors.New("bad flag")), ErrUsage)
}
