//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/rmaflow/internal/database/dbtest"
	"github.com/dejobratic/rmaflow/internal/idempotency/postgres"
)

func TestStoreSetAndGet(t *testing.T) {
	store := postgres.NewStore(dbtest.NewPool(t), nil)
	ctx := context.Background()

	stored, err := store.SetWithTTL(ctx, "idempotency:key-1", []byte(`{"status":"completed"}`), time.Hour)
	if err != nil {
		t.Fatalf("failed to save idempotency key: %v", err)
	}
	if !stored {
		t.Fatal("expected first write to store")
	}

	got, err := store.Get(ctx, "idempotency:key-1")
	if err != nil {
		t.Fatalf("failed to get idempotency key: %v", err)
	}
	if string(got) != `{"status":"completed"}` {
		t.Errorf("unexpected value %s", got)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := postgres.NewStore(dbtest.NewPool(t), nil)

	got, err := store.Get(context.Background(), "nonexistent-key")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil value, got %s", got)
	}
}

func TestStoreKeepsLiveKey(t *testing.T) {
	store := postgres.NewStore(dbtest.NewPool(t), nil)
	ctx := context.Background()

	if _, err := store.SetWithTTL(ctx, "k", []byte("first"), time.Hour); err != nil {
		t.Fatalf("failed to save first value: %v", err)
	}

	stored, err := store.SetWithTTL(ctx, "k", []byte("second"), time.Hour)
	if err != nil {
		t.Fatalf("failed to save second value: %v", err)
	}
	if stored {
		t.Error("expected conflicting write to be rejected")
	}

	got, _ := store.Get(ctx, "k")
	if string(got) != "first" {
		t.Errorf("expected first value preserved, got %s", got)
	}
}

func TestStoreReplacesExpiredKey(t *testing.T) {
	store := postgres.NewStore(dbtest.NewPool(t), nil)
	ctx := context.Background()

	if _, err := store.SetWithTTL(ctx, "k", []byte("old"), 10*time.Millisecond); err != nil {
		t.Fatalf("failed to save value: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if got, _ := store.Get(ctx, "k"); got != nil {
		t.Fatalf("expected expired key to miss, got %s", got)
	}

	stored, err := store.SetWithTTL(ctx, "k", []byte("new"), time.Hour)
	if err != nil || !stored {
		t.Fatalf("expected write over expired row, got %v, %v", stored, err)
	}

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() failed: %v", err)
	}
	if purged != 0 {
		t.Errorf("expected nothing to purge, got %d", purged)
	}
}
