// Package testutil opens the integration test database. Every helper skips
// the calling test when TEST_DATABASE_URL is unset, so the unit suites run
// without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/trip-companion/backend/migrations"
)

// DSNVar names the environment variable holding the test database URL.
const DSNVar = "TEST_DATABASE_URL"

// NewPool connects to the test database and closes the pool when t ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := openPool(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB returns a database/sql handle on a fresh test pool, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { db.Close() })
	return db
}

// RunWithSchema migrates the test database up to the latest version and then
// runs m. Without TEST_DATABASE_URL it just runs m; the integration tests
// skip themselves. Use it as the body of TestMain.
func RunWithSchema(m *testing.M) int {
	dsn := os.Getenv(DSNVar)
	if dsn == "" {
		return m.Run()
	}
	if err := migrateUp(context.Background(), dsn); err != nil {
		fmt.Fprintf(os.Stderr, "testutil.RunWithSchema: %v\n", err)
		return 1
	}
	return m.Run()
}

func migrateUp(ctx context.Context, dsn string) error {
	pool, err := openPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNVar)
	if dsn == "" {
		t.Skip(DSNVar + " not set; skipping integration test")
	}
	return dsn
}
