package ports

import (
	"context"
	"time"
)

// KeyValueStore is the storage behind idempotency replays.
// Get returns nil, nil for a missing or expired key. SetWithTTL never overwrites a live
// key and reports whether value was stored.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}
