package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ledger/internal/cli"
	"ledger/internal/core"
	"ledger/internal/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(cli.SetupLogger(""))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := cli.ConfigureLogger(cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	ctx = log.WithContext(ctx, logger)

	rt, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("Failed to close resources", log.FieldError, err)
		}
	}()

	err = cli.NewCommands(rt, os.Stdout).Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, core.ErrPersistFailure):
		fmt.Fprintf(os.Stderr, "Warning: change applied but not saved: %v\n", err)
		return 1
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
