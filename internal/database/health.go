package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables the Postgres-backed adapters read and write.
const (
	TableIdempotencyKeys = "idempotency_keys"
	TableRmaSubmissions  = "rma_submissions"
)

const healthTimeout = 2 * time.Second

// ErrMissingTable means the database is reachable but migrations have not created a
// table an adapter needs.
var ErrMissingTable = errors.New("table missing, run migrations")

// CheckHealth pings the pool and confirms every table in tables exists.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool, tables ...string) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	for _, table := range tables {
		var exists bool
		if err := pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return fmt.Errorf("look up table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrMissingTable, table)
		}
	}

	return nil
}
