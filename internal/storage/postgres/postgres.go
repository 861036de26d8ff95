// Package postgres stores documents in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/config"
)

// ErrSchemaMissing is returned when the documents table has not been migrated.
var ErrSchemaMissing = errors.New("documents table missing; run the migrate command")

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{pool: pool}, nil
}

// Open connects, verifies the documents table exists, and returns a
// repository that owns the pool.
//
// Postcondition: Returns a ready repository, or ErrSchemaMissing when the
// migration has not been applied, or another non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DocumentRepository, error) {
	p, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.CheckSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	logger.Debug("postgres document store ready", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return OpenDocuments(p), nil
}

// CheckSchema reports ErrSchemaMissing when the documents table is absent.
func (p *Pool) CheckSchema(ctx context.Context) error {
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT to_regclass('documents') IS NOT NULL`).Scan(&exists); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !exists {
		return ErrSchemaMissing
	}
	return nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
