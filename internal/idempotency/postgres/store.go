package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dejobratic/rmaflow/internal/database"
)

// Store keeps idempotency values in the idempotency_keys table.
type Store struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

func NewStore(pool *pgxpool.Pool, metrics *database.Metrics) *Store {
	return &Store{pool: pool, metrics: metrics}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM idempotency_keys
		WHERE key = $1 AND expires_at > NOW()
	`

	start := time.Now()
	var value []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		s.metrics.RecordQuery(ctx, database.TableIdempotencyKeys, "get", start, nil)
		return nil, nil
	}
	s.metrics.RecordQuery(ctx, database.TableIdempotencyKeys, "get", start, err)
	if err != nil {
		return nil, fmt.Errorf("select idempotency key: %w", err)
	}

	return value, nil
}

// SetWithTTL inserts the key, replacing an existing row only once it has expired.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO idempotency_keys (key, value, expires_at)
		VALUES ($1, $2, NOW() + make_interval(secs => $3))
		ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, created_at = NOW(), expires_at = EXCLUDED.expires_at
			WHERE idempotency_keys.expires_at <= NOW()
	`

	start := time.Now()
	tag, err := s.pool.Exec(ctx, query, key, value, ttl.Seconds())
	s.metrics.RecordQuery(ctx, database.TableIdempotencyKeys, "set", start, err)
	if err != nil {
		return false, fmt.Errorf("insert idempotency key: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	start := time.Now()
	tag, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= NOW()`)
	s.metrics.RecordQuery(ctx, database.TableIdempotencyKeys, "purge", start, err)
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}
	s.metrics.RecordPurge(ctx, database.TableIdempotencyKeys, tag.RowsAffected())
	return tag.RowsAffected(), nil
}
