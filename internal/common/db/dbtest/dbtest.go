// Package dbtest opens real databases for repository tests.
package dbtest

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"gorm.io/gorm"

	"github.com/AlibekovAA/toggle-task/internal/common/db"
	"github.com/AlibekovAA/toggle-task/internal/common/logger"
)

// Postgres connects to TEST_DATABASE_URL, applies migrations and truncates
// all tables. The test is skipped when no database is reachable.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		t.Skipf("Skipping test: database not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Skipping test: database ping failed: %v", err)
	}

	log := logger.NewWriter(io.Discard, "test", "error")
	if _, err := db.Migrate(ctx, pool, log, false); err != nil {
		pool.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE tasks, revoked_sessions, users CASCADE`); err != nil {
		pool.Close()
		t.Fatalf("failed to clean up test data: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// SQLite opens a private in-memory database migrated with models.
func SQLite(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrateSQLite(gdb, models...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
