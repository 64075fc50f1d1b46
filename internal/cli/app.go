// Package cli wires the quoteflow commands: it turns a loaded configuration
// into a ready service and drives terminal sessions.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/quoteflow"
	"github.com/aretw0/quoteflow/internal/config"
	"github.com/aretw0/quoteflow/pkg/adapters/quoteapi"
	"github.com/aretw0/quoteflow/pkg/domain"
	"github.com/aretw0/quoteflow/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// AppOptions selects the optional parts of an App.
type AppOptions struct {
	// Metrics registers Prometheus collectors and records engine and quote events.
	Metrics bool
	// LogSteps logs every engine event. Off for the terminal wizard, which shares the screen.
	LogSteps bool
}

// App is the wired service of one command invocation.
type App struct {
	Service *quoteflow.Service
	// Registry is set when AppOptions.Metrics is.
	Registry *prometheus.Registry

	backend *config.Backend
}

// NewApp opens the configured store and builds the service.
func NewApp(cfg config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	backend, err := config.OpenStore(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	api := quoteapi.New(cfg.API.BaseURL,
		quoteapi.WithTimeout(cfg.API.Timeout),
		quoteapi.WithLogger(logger),
	)

	var hooks []domain.LifecycleHooks
	if opts.LogSteps {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}
	svcOpts := []quoteflow.Option{
		quoteflow.WithLogger(logger),
		quoteflow.WithLeadSink(api),
		quoteflow.WithMaxSkips(cfg.Session.MaxSkips),
	}
	if backend.Locker != nil {
		svcOpts = append(svcOpts,
			quoteflow.WithLocker(backend.Locker),
			quoteflow.WithLockTTL(cfg.Session.LockTTL),
		)
	}

	a := &App{backend: backend}
	if opts.Metrics {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := observability.NewMetrics(a.Registry)
		hooks = append(hooks, m.LifecycleHooks())
		svcOpts = append(svcOpts, quoteflow.WithQuoteHooks(m.QuoteHooks()))
	}
	svcOpts = append(svcOpts, quoteflow.WithLifecycleHooks(observability.Combine(hooks...)))

	a.Service = quoteflow.New(backend.Store, api, svcOpts...)
	return a, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.backend == nil {
		return nil
	}
	return a.backend.Close()
}
