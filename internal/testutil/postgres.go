// Package testutil provides test helpers for container-backed storage.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/dexcompanion/internal/config"
	"github.com/cory-johannsen/dexcompanion/internal/storage/postgres"
)

const (
	pgImage    = "postgres:16-alpine"
	pgPort     = "5432"
	pgIdentity = "dex"
)

// documentsSchema mirrors migrations/000001_create_documents.up.sql.
const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
    name       VARCHAR(128) PRIMARY KEY,
    body       JSONB        NOT NULL,
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);`

// PostgresContainer is a disposable PostgreSQL server with a connected pool.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a throwaway PostgreSQL server for t. Under
// -short, or when no container provider is reachable, the test is skipped.
// The container and pool are released by t.Cleanup.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("container tests disabled by -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	began := time.Now()
	ctr := startPostgres(ctx, t)

	dbCfg := databaseConfig(ctx, t, ctr)
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to %s:%d: %v", dbCfg.Host, dbCfg.Port, err)
	}
	t.Cleanup(pool.Close)
	t.Logf("%s ready after %s", pgImage, time.Since(began).Round(time.Millisecond))

	return &PostgresContainer{container: ctr, Pool: pool, Config: dbCfg}
}

func startPostgres(ctx context.Context, t *testing.T) testcontainers.Container {
	t.Helper()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{pgPort + "/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgIdentity,
				"POSTGRES_PASSWORD": pgIdentity,
				"POSTGRES_DB":       pgIdentity,
			},
			// The server logs readiness once for the init pass and once for real.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v", pgImage, err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })
	return ctr
}

func databaseConfig(ctx context.Context, t *testing.T, ctr testcontainers.Container) config.DatabaseConfig {
	t.Helper()
	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, pgPort)
	if err != nil {
		t.Fatalf("resolving port %s: %v", pgPort, err)
	}
	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            pgIdentity,
		Password:        pgIdentity,
		Name:            pgIdentity,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}
}

// ApplyMigrations creates the documents table in place, so storage tests do
// not depend on the migrate command.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	if _, err := pc.Pool.DB().Exec(context.Background(), documentsSchema); err != nil {
		t.Fatalf("creating documents table: %v", err)
	}
}
