package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/newthinker/finratio/internal/api"
	"github.com/newthinker/finratio/internal/collector"
	"github.com/newthinker/finratio/internal/collector/yahoo"
	"github.com/newthinker/finratio/internal/config"
	"github.com/newthinker/finratio/internal/core"
	"github.com/newthinker/finratio/internal/metrics"
	"github.com/newthinker/finratio/internal/report"
	"github.com/newthinker/finratio/internal/sector"
	"github.com/newthinker/finratio/internal/storage/archive"
	"github.com/newthinker/finratio/internal/storage/statement"
)

// App wires configuration to the repository, price providers and engines.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry

	store   *statement.Store
	prices  collector.PriceProvider
	reports *report.Assembler
	sectors *sector.Aggregator
}

// Option configures an App.
type Option func(*options)

type options struct {
	backend   statement.Backend
	providers []collector.PriceProvider
	metrics   *metrics.Registry
}

// WithBackend uses backend instead of the one named by the storage config.
func WithBackend(b statement.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithProvider registers p in place of any configured collector of the
// same name.
func WithProvider(p collector.PriceProvider) Option {
	return func(o *options) { o.providers = append(o.providers, p) }
}

// WithMetrics records business metrics into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *options) { o.metrics = reg }
}

// New creates a new App instance
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = OpenBackend(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: o.metrics,
		store:   statement.NewStore(backend),
	}

	providers := collector.NewRegistry()
	for _, p := range o.providers {
		providers.Register(p)
	}
	for name, cc := range cfg.Collectors {
		if _, injected := providers.Get(name); injected || !cc.Enabled {
			continue
		}
		p, err := a.newProvider(name, cc.Config)
		if err != nil {
			backend.Close()
			return nil, err
		}
		providers.Register(p)
	}

	prices, err := providers.MustGet(cfg.Prices.Provider)
	if err != nil {
		backend.Close()
		return nil, err
	}
	a.prices = prices

	a.reports = report.New(a.store, prices, cfg.Valuation,
		report.WithLogger(logger.Named("report")),
		report.WithMetrics(a.metrics),
	)
	a.sectors = sector.New(a.store, cfg.Sector,
		sector.WithLogger(logger.Named("sector")),
		sector.WithMetrics(a.metrics),
	)

	logger.Info("app initialized",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("price_provider", prices.Name()),
		zap.Strings("providers", providers.Names()),
	)
	return a, nil
}

func (a *App) newProvider(name string, cfg collector.Config) (collector.PriceProvider, error) {
	switch name {
	case "yahoo":
		return yahoo.New(cfg,
			yahoo.WithLogger(a.logger.Named("yahoo")),
			yahoo.WithMetrics(a.metrics),
		), nil
	}
	return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown collector %q", name))
}

// OpenBackend opens the document backend the storage config names.
func OpenBackend(ctx context.Context, cfg config.StorageConfig) (statement.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return statement.NewMemoryBackend(), nil
	case config.BackendLocalFS:
		fs, err := archive.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return statement.NewDocumentBackend(fs), nil
	case config.BackendS3:
		bucket, err := archive.NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		return statement.NewDocumentBackend(bucket), nil
	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating sqlite dir: %w", err)
			}
		}
		return statement.NewSQLiteBackend(ctx, cfg.SQLite.Path)
	case config.BackendPostgres:
		return statement.NewPostgresBackend(ctx, cfg.Postgres.DSN)
	}
	return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage backend %q", cfg.Backend))
}

// Config returns the validated configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Store returns the statement repository.
func (a *App) Store() *statement.Store { return a.store }

// Reports returns the company report assembler.
func (a *App) Reports() *report.Assembler { return a.reports }

// Sectors returns the sector aggregator.
func (a *App) Sectors() *sector.Aggregator { return a.sectors }

// Prices returns the price provider named by prices.provider.
func (a *App) Prices() collector.PriceProvider { return a.prices }

// Dependencies returns the services the HTTP API routes to.
func (a *App) Dependencies() api.Dependencies {
	deps := api.Dependencies{
		Reports:   a.reports,
		Sectors:   a.sectors,
		Directory: a.store,
		Quotes:    a.prices,
	}
	if a.cfg.Metrics.Enabled {
		deps.Metrics = a.metrics
	}
	return deps
}

// Close releases the document backend.
func (a *App) Close() error {
	return a.store.Close()
}
