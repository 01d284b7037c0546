// Package cli wires configuration, logging, storage and the ledger
// together and implements the ledger command set.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

// SetupLogger initializes structured logging at the given level and sets
// it as the default logger. Output goes to stderr. An empty level means info.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// ConfigureLogger replaces the startup logger with one at the validated
// configured level.
func ConfigureLogger(cfg *config.Config) *log.Logger {
	return SetupLogger(cfg.LogLevel)
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// Runtime holds everything a command needs.
type Runtime struct {
	Config *config.Config
	Logger *log.Logger
	Ledger *ledger.Ledger

	// Events is nil unless AMQP is configured and reachable.
	Events *amqp.Client

	backend *backend.BackendResult
}

// Bootstrap builds the store selected by cfg, connects the optional
// event publisher and opens the ledger.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger, backend: res}
	opts := []ledger.Option{ledger.WithLogger(logger)}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			rt.Events = client
			opts = append(opts, ledger.WithNotifier(client))
			logger.DebugContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	l, err := ledger.Open(ctx, res.Store, opts...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	rt.Ledger = l
	return rt, nil
}

// Close releases the event publisher and the store.
func (r *Runtime) Close() error {
	var errs []error
	if r.Events != nil {
		errs = append(errs, r.Events.Close())
	}
	errs = append(errs, r.backend.Close())
	return errors.Join(errs...)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
