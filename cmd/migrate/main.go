// Package main applies the postgres document-store migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/config"
	"github.com/cory-johannsen/dexcompanion/internal/observability"
	"github.com/cory-johannsen/dexcompanion/migrations"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and DEX_ env when empty)")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg.Database, *direction, *steps, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	}
	logger.Info("migration finished", zap.Duration("elapsed", time.Since(start)))
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadDefaults()
	}
	return config.Load(path)
}

func run(db config.DatabaseConfig, direction string, steps int, logger *zap.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, db.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info("schema version",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Bool("changed", err == nil),
	)
	return nil
}
