package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/readinglog/internal/app/store/pgdb"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestPG returns a pool whose search_path points at a fresh schema
// holding the application tables. The schema is dropped when the test ends.
// The test is skipped unless READINGLOG_TEST_POSTGRES_URL is set.
func SetupTestPG(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("READINGLOG_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("READINGLOG_TEST_POSTGRES_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	schema := "rl_test_" + shortID()

	admin, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		admin.Close()
		t.Skipf("postgres unavailable: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		admin.Close()
		t.Fatalf("parse postgres url: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		admin.Close()
		t.Fatalf("open test pool: %v", err)
	}
	if err := pgdb.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		admin.Close()
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = admin.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})
	return pool
}
