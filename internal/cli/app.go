package cli

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	gojaAdapter "github.com/aretw0/stepwise/pkg/adapters/goja"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/persistence"
)

const tracerName = "github.com/aretw0/stepwise"

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
	// Backend and DataPath override the storage section when set.
	Backend  string
	DataPath string
}

// App is a fully wired workbench plus the resources it holds.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Workbench *stepwise.Workbench

	closeStore func() error
}

// Open loads the configuration and wires the workbench it describes.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Storage.Backend = config.Backend(opts.Backend)
	}
	if opts.DataPath != "" {
		cfg.Storage.Path = opts.DataPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := createLogger(cfg, opts.Debug)

	store, closeStore, err := OpenStore(ctx, cfg, logging.Component(logger, "store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	metrics := observability.NewMetrics()
	repo := persistence.NewRepository(store,
		persistence.WithKey(cfg.Storage.Key),
		persistence.WithLogger(logging.Component(logger, "persistence")),
	)
	evaluator := gojaAdapter.New(
		gojaAdapter.WithTimeout(cfg.Scheduler.StepTimeout),
		gojaAdapter.WithLogger(logging.Component(logger, "evaluator")),
	)

	wb, err := stepwise.New(ctx,
		stepwise.WithRepository(repo),
		stepwise.WithEvaluator(evaluator),
		stepwise.WithDebounce(cfg.Scheduler.Debounce),
		stepwise.WithLifecycleHooks(metrics.Hooks()),
		stepwise.WithLifecycleHooks(observability.LoggingHooks(logging.Component(logger, "pipeline"))),
		stepwise.WithTracer(otel.Tracer(tracerName)),
		stepwise.WithLogger(logger),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Workbench:  wb,
		closeStore: closeStore,
	}, nil
}

// Close stops the scheduler and releases the store.
func (a *App) Close() error {
	a.Workbench.Close()
	return a.closeStore()
}

// createLogger writes to Stderr so Stdout stays free for pipeline output.
func createLogger(cfg *config.Config, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.New(level, cfg.Log.Format)
}
