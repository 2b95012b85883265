// Package dbtest hands integration tests a migrated Postgres pool.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dejobratic/rmaflow/internal/database"
)

// URLEnv points the tests at an existing database instead of a container. Tables are
// truncated before each test that uses it.
const URLEnv = "RMAFLOW_TEST_DATABASE_URL"

const image = "postgres:16-alpine"

// NewPool returns a pool on a freshly migrated schema, closed when the test ends.
// Tests are skipped with -short.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	ctx := context.Background()

	url := os.Getenv(URLEnv)
	if url == "" {
		url = startContainer(ctx, t)
	}

	version, err := database.RunMigrations(url, migrationsDir(t))
	if err != nil {
		t.Fatalf("migrate %s: %v", image, err)
	}
	t.Logf("schema at version %d", version)

	pool, err := database.NewPool(ctx, url)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.CheckHealth(ctx, pool, database.TableIdempotencyKeys, database.TableRmaSubmissions); err != nil {
		t.Fatalf("schema not ready: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE idempotency_keys, rma_submissions`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return pool
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := testpostgres.Run(ctx, image,
		testpostgres.WithDatabase("rmaflow"),
		testpostgres.WithUsername("rmaflow"),
		testpostgres.WithPassword("rmaflow"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("start %s: %v", image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("container connection string: %v", err)
	}
	return url
}

// migrationsDir walks up from the test's package directory to the module root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above " + dir)
		}
		dir = parent
	}
}
