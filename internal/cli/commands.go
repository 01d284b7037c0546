package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/report"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("usage error")

// EventSource streams published ledger events.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEventMessage) error) error
}

// Commands implements the ledger command line on top of a Ledger.
type Commands struct {
	Ledger   *ledger.Ledger
	Events   EventSource
	Out      io.Writer
	Currency string
	Now      func() time.Time
}

// NewCommands builds the command set for a bootstrapped runtime.
func NewCommands(rt *Runtime, out io.Writer) *Commands {
	c := &Commands{
		Ledger:   rt.Ledger,
		Out:      out,
		Currency: rt.Config.CurrencySymbol,
		Now:      time.Now,
	}
	if rt.Events != nil {
		c.Events = rt.Events
	}
	return c
}

// Run dispatches args[0] to its command.
func (c *Commands) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.Usage()
		return ErrUsage
	}

	switch args[0] {
	case "add":
		return c.runAdd(ctx, args[1:])
	case "list":
		return c.runList(args[1:])
	case "edit":
		return c.runEdit(ctx, args[1:])
	case "delete":
		return c.runDelete(ctx, args[1:])
	case "summary":
		return c.runSummary()
	case "report":
		return c.runReport(args[1:])
	case "categories":
		return c.runCategories(ctx, args[1:])
	case "watch":
		return c.runWatch(ctx)
	case "help", "-h", "--help":
		c.Usage()
		return nil
	default:
		fmt.Fprintf(c.Out, "Unknown command: %s\n\n", args[0])
		c.Usage()
		return ErrUsage
	}
}

// Usage prints the command overview.
func (c *Commands) Usage() {
	fmt.Fprintln(c.Out, "Personal Finance Ledger")
	fmt.Fprintln(c.Out, "\nUsage:")
	fmt.Fprintln(c.Out, "  ledger <command> [options]")
	fmt.Fprintln(c.Out, "\nCommands:")
	fmt.Fprintln(c.Out, "  add                       Record an expense")
	fmt.Fprintln(c.Out, "  list                      List expenses")
	fmt.Fprintln(c.Out, "  edit                      Change fields of an expense")
	fmt.Fprintln(c.Out, "  delete                    Delete an expense")
	fmt.Fprintln(c.Out, "  summary                   Show total and per-category spending")
	fmt.Fprintln(c.Out, "  report monthly|category|upcoming")
	fmt.Fprintln(c.Out, "                            Generate a report")
	fmt.Fprintln(c.Out, "  categories list|add|budget")
	fmt.Fprintln(c.Out, "                            Manage categories and budgets")
	fmt.Fprintln(c.Out, "  watch                     Follow change events (needs AMQP_URL)")
	fmt.Fprintln(c.Out, "  help                      Show this help message")
	fmt.Fprintln(c.Out, "\nRun 'ledger <command> -h' for more information on a command.")
}

func (c *Commands) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.Out)
	return fs
}

func (c *Commands) runAdd(ctx context.Context, args []string) error {
	fs := c.flags("add")
	amount := fs.String("amount", "", "expense amount (required)")
	category := fs.String("category", "", "category name or number from 'categories list'")
	desc := fs.String("desc", "", "description")
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	recurring := fs.Bool("recurring", false, "record a recurring expense")
	frequency := fs.String("frequency", string(core.Monthly), "daily, weekly, monthly or yearly")
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if *amount == "" {
		return fmt.Errorf("%w: -amount is required", ErrUsage)
	}

	value, err := core.ParseAmount(*amount)
	if err != nil {
		return err
	}
	day := ""
	if *date != "" {
		if day, err = core.ParseDate(*date); err != nil {
			return err
		}
	}

	name := c.Ledger.ResolveCategory(*category)
	e := core.NewExpense(value, name, *desc, day)
	if *recurring {
		e = core.NewRecurringExpense(value, name, *desc, day, *frequency)
	}

	err = c.Ledger.AddExpense(ctx, e)
	if err != nil && !errors.Is(err, core.ErrPersistFailure) {
		return err
	}
	fmt.Fprintf(c.Out, "Added expense #%d: %s %s on %s\n", c.Ledger.Len(), e.Category, c.money(e.Amount), e.Date)
	return err
}

func (c *Commands) runList(args []string) error {
	fs := c.flags("list")
	category := fs.String("category", "", "only show this category (exact name)")
	month := fs.String("month", "", "only show this month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if *month != "" {
		if _, err := core.ParseMonth(*month); err != nil {
			return err
		}
	}

	expenses := c.Ledger.Expenses()
	tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDate\tCategory\tAmount\tDescription\tRepeats")
	shown := 0
	for i, e := range expenses {
		if *category != "" && e.Category != *category {
			continue
		}
		if *month != "" && !e.InMonth(*month) {
			continue
		}
		repeats := "-"
		if e.IsRecurring() {
			repeats = string(e.Frequency)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, e.Date, e.Category, c.money(e.Amount), e.Description, repeats)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(c.Out, "No expenses recorded.")
		return nil
	}
	return tw.Flush()
}

func (c *Commands) runEdit(ctx context.Context, args []string) error {
	fs := c.flags("edit")
	n := fs.Int("n", 0, "expense number from 'list' (required)")
	fs.String("amount", "", "new amount")
	fs.String("category", "", "new category name or number")
	fs.String("desc", "", "new description")
	fs.String("date", "", "new date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if *n == 0 {
		return fmt.Errorf("%w: -n is required", ErrUsage)
	}

	var (
		u   core.ExpenseUpdate
		err error
	)
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		value := f.Value.String()
		switch f.Name {
		case "amount":
			var v float64
			if v, err = core.ParseAmount(value); err == nil {
				u.Amount = &v
			}
		case "category":
			name := c.Ledger.ResolveCategory(value)
			u.Category = &name
		case "desc":
			u.Description = &value
		case "date":
			var d string
			if d, err = core.ParseDate(value); err == nil {
				u.Date = &d
			}
		}
	})
	if err != nil {
		return err
	}
	if u.IsEmpty() {
		return fmt.Errorf("%w: nothing to change", ErrUsage)
	}

	err = c.Ledger.UpdateExpense(ctx, *n-1, u)
	if err != nil && !errors.Is(err, core.ErrPersistFailure) {
		return err
	}
	fmt.Fprintf(c.Out, "Updated expense #%d\n", *n)
	return err
}

func (c *Commands) runDelete(ctx context.Context, args []string) error {
	fs := c.flags("delete")
	n := fs.Int("n", 0, "expense number from 'list' (required)")
	if err := fs.Parse(args); err != nil {
		return usage(err)
	}
	if *n == 0 {
		return fmt.Errorf("%w: -n is required", ErrUsage)
	}

	removed, err := c.Ledger.DeleteExpense(ctx, *n-1)
	if err != nil && !errors.Is(err, core.ErrPersistFailure) {
		return err
	}
	fmt.Fprintf(c.Out, "Deleted expense #%d: %s %s\n", *n, removed.Category, c.money(removed.Amount))
	return err
}

func (c *Commands) runSummary() error {
	summary := c.Ledger.CategorySummary()
	if len(summary) == 0 {
		fmt.Fprintln(c.Out, "No expenses recorded.")
		return nil
	}
	fmt.Fprintf(c.Out, "Total Spending: %s\n", c.money(c.Ledger.TotalSpending()))
	fmt.Fprintln(c.Out, "Category Summary:")
	for _, s := range summary {
		fmt.Fprintf(c.Out, "  %s: %s\n", s.Name, c.money(s.Amount))
	}
	return nil
}

func (c *Commands) runReport(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: report needs one of monthly, category, upcoming", ErrUsage)
	}
	opts := []report.Option{report.WithCurrency(c.Currency)}

	var g report.Generator
	switch args[0] {
	case "monthly":
		fs := c.flags("report monthly")
		month := fs.String("month", "", "month as YYYY-MM (default current month)")
		if err := fs.Parse(args[1:]); err != nil {
			return usage(err)
		}
		m := *month
		if m == "" {
			m = c.Now().Format(core.MonthLayout)
		}
		m, err := core.ParseMonth(m)
		if err != nil {
			return err
		}
		g = report.NewMonthly(c.Ledger.Expenses(), m, opts...)
	case "category":
		g = report.NewCategoryBudget(c.Ledger.Expenses(), c.Ledger.Categories(), opts...)
	case "upcoming":
		fs := c.flags("report upcoming")
		from := fs.String("from", "", "first day to consider as YYYY-MM-DD (default today)")
		if err := fs.Parse(args[1:]); err != nil {
			return usage(err)
		}
		day := c.Now()
		if *from != "" {
			d, err := core.ParseDate(*from)
			if err != nil {
				return err
			}
			day, _ = time.Parse(core.DateLayout, d)
		}
		g = report.NewUpcoming(c.Ledger.Expenses(), day, opts...)
	default:
		return fmt.Errorf("%w: unknown report %q", ErrUsage, args[0])
	}

	fmt.Fprint(c.Out, g.Generate())
	return nil
}

func (c *Commands) runCategories(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		tw := tabwriter.NewWriter(c.Out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tName\tBudget")
		for i, cat := range c.Ledger.Categories() {
			budget := "unlimited"
			if cat.BudgetLimit > 0 {
				budget = c.money(cat.BudgetLimit)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, cat.Name, budget)
		}
		return tw.Flush()

	case "add":
		fs := c.flags("categories add")
		name := fs.String("name", "", "category name (required)")
		budget := fs.String("budget", "0", "monthly budget limit, 0 for none")
		if err := fs.Parse(args); err != nil {
			return usage(err)
		}
		if *name == "" {
			return fmt.Errorf("%w: -name is required", ErrUsage)
		}
		limit, err := core.ParseBudget(*budget)
		if err != nil {
			return err
		}
		err = c.Ledger.AddCategory(ctx, *name, limit)
		if err != nil && !errors.Is(err, core.ErrPersistFailure) {
			return err
		}
		fmt.Fprintf(c.Out, "Added category %s\n", *name)
		return err

	case "budget":
		fs := c.flags("categories budget")
		n := fs.Int("n", 0, "category number from 'categories list' (required)")
		limitFlag := fs.String("limit", "", "new budget limit, 0 for none (required)")
		if err := fs.Parse(args); err != nil {
			return usage(err)
		}
		if *n == 0 || *limitFlag == "" {
			return fmt.Errorf("%w: -n and -limit are required", ErrUsage)
		}
		limit, err := core.ParseBudget(*limitFlag)
		if err != nil {
			return err
		}
		err = c.Ledger.UpdateCategoryBudget(ctx, *n-1, limit)
		if err != nil && !errors.Is(err, core.ErrPersistFailure) {
			return err
		}
		fmt.Fprintf(c.Out, "Updated budget of category #%d to %s\n", *n, c.money(limit))
		return err

	default:
		return fmt.Errorf("%w: unknown categories command %q", ErrUsage, sub)
	}
}

func (c *Commands) runWatch(ctx context.Context) error {
	if c.Events == nil {
		return errors.New("event stream not configured, set AMQP_URL")
	}
	fmt.Fprintln(c.Out, "Watching ledger events, press Ctrl+C to stop.")
	err := c.Events.ConsumeLedgerEvents(ctx, func(m *amqp.LedgerEventMessage) error {
		_, err := fmt.Fprintf(c.Out, "%s  %-24s %-10s index=%d size=%d persisted=%t\n",
			m.Timestamp.Format(time.RFC3339), m.Operation, m.Collection, m.Index, m.Size, m.Persisted)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Commands) money(v float64) string {
	return c.Currency + core.FormatAmount(v)
}

func usage(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
