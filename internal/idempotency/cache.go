// Package idempotency replays stored responses for repeated idempotency keys.
package idempotency

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// KeyPrefix namespaces every key written to the backing store.
const KeyPrefix = "idempotency:"

// DefaultTTL is how long a stored response is replayed.
const DefaultTTL = time.Hour

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)

// ValidKey reports whether key is an acceptable caller-supplied idempotency key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Cache is a best-effort layer over a KeyValueStore. Store failures are logged and
// treated as misses so the cache never fails a request.
type Cache struct {
	store  ports.KeyValueStore
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewCache(store ports.KeyValueStore, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: store, ttl: ttl, prefix: KeyPrefix, logger: logger}
}

// Scoped returns a cache whose keys live under scope, so different operations sharing
// a caller key do not replay each other's responses.
func (c *Cache) Scoped(scope string) *Cache {
	clone := *c
	clone.prefix = c.prefix + scope + ":"
	return &clone
}

// Check decodes the stored value for key into dest and reports whether one was found.
func (c *Cache) Check(ctx context.Context, key string, dest any) bool {
	raw, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		c.logger.WarnContext(ctx, "idempotency lookup failed", "idempotency_key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.WarnContext(ctx, "idempotency value unreadable", "idempotency_key", key, "error", err)
		return false
	}
	return true
}

// Store writes value under key and reports whether it was stored. A key that already
// holds a live value is left alone.
func (c *Cache) Store(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "idempotency value not serializable", "idempotency_key", key, "error", err)
		return false
	}

	stored, err := c.store.SetWithTTL(ctx, c.prefix+key, raw, c.ttl)
	if err != nil {
		c.logger.WarnContext(ctx, "idempotency store failed", "idempotency_key", key, "error", err)
		return false
	}
	if !stored {
		c.logger.InfoContext(ctx, "idempotency key already stored", "idempotency_key", key)
	}
	return stored
}

// Entry is the replayable HTTP response kept per key.
type Entry struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	StoredAt   time.Time       `json:"stored_at"`
}
