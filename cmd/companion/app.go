package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/catalog"
	"github.com/cory-johannsen/dexcompanion/internal/collection"
	"github.com/cory-johannsen/dexcompanion/internal/config"
	"github.com/cory-johannsen/dexcompanion/internal/observability"
	"github.com/cory-johannsen/dexcompanion/internal/profile"
	"github.com/cory-johannsen/dexcompanion/internal/server"
	"github.com/cory-johannsen/dexcompanion/internal/storage"
	"github.com/cory-johannsen/dexcompanion/internal/storage/badger"
	"github.com/cory-johannsen/dexcompanion/internal/storage/file"
	"github.com/cory-johannsen/dexcompanion/internal/storage/memory"
	"github.com/cory-johannsen/dexcompanion/internal/storage/postgres"
	"github.com/cory-johannsen/dexcompanion/internal/storage/sqlite"
)

// app is everything one command invocation needs, opened from configuration.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	docs       storage.Documents
	collection *collection.Store
	profile    *profile.Store
	catalog    catalog.Catalog
	ui         *ui
	services   *server.Lifecycle
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	backend    string
	dataPath   string
}

// loadConfig reads the config file when one is given, otherwise defaults and
// DEX_ environment overrides, then applies flag overrides.
func loadConfig(opts rootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath == "" {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(opts.configPath)
	}
	if err != nil {
		return config.Config{}, err
	}
	if opts.backend == "" && opts.dataPath == "" {
		return cfg, nil
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.dataPath != "" {
		cfg.Storage.Path = opts.dataPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openApp wires configuration, logging, metrics, storage, both stores, and
// the catalog client.
//
// Postcondition: Returns a ready app that the caller must Close, or a
// non-nil error with every partially opened resource released.
func openApp(ctx context.Context, opts rootOptions, out, errOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLoggerTo(cfg.Logging, errOut)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	reg := observability.NewRegistry()
	storeMetrics := observability.NewStoreMetrics(reg)

	docs, err := openDocuments(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	coll, err := collection.Open(ctx, docs, cfg.Storage.CollectionDocument, logger, collection.WithMetrics(storeMetrics))
	if err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	prof, err := profile.Open(ctx, docs, cfg.Storage.ProfileDocument, logger, profile.WithMetrics(storeMetrics))
	if err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("opening profile: %w", err)
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		docs:       docs,
		collection: coll,
		profile:    prof,
		catalog:    catalog.NewHTTPClient(cfg.Catalog, logger, catalog.WithMetrics(catalog.NewMetrics(reg))),
		ui:         newUI(out),
		services:   server.NewLifecycle(logger),
	}
	if cfg.Metrics.Addr != "" {
		a.services.Add("metrics", metricsService(cfg.Metrics.Addr, reg, logger))
	}
	a.services.Start(ctx)
	return a, nil
}

// metricsService serves /metrics for the life of the command.
func metricsService(addr string, reg *prometheus.Registry, logger *zap.Logger) server.Service {
	return server.FuncService(func(ctx context.Context) error {
		return observability.ServeMetrics(ctx, addr, reg, logger)
	})
}

// openDocuments opens the configured storage backend.
func openDocuments(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Documents, error) {
	var (
		docs storage.Documents
		err  error
	)
	switch cfg.Storage.Backend {
	case config.BackendFile:
		docs, err = file.Open(cfg.Storage.Path)
	case config.BackendBadger:
		docs, err = badger.Open(badger.Config{Path: cfg.Storage.Path, SyncWrites: true, Logger: logger})
	case config.BackendSQLite:
		docs, err = sqlite.Open(cfg.Storage.Path)
	case config.BackendPostgres:
		docs, err = postgres.Open(ctx, cfg.Database, logger)
	case config.BackendMemory:
		docs = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("storage opened", zap.String("backend", cfg.Storage.Backend), zap.String("path", cfg.Storage.Path))
	return docs, nil
}

// Close stops background services and releases storage.
func (a *app) Close() error {
	var errs []error
	if err := a.services.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := a.docs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
