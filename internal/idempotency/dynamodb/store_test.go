package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableMock evaluates the single condition expression the store issues.
type tableMock struct {
	mu     sync.Mutex
	items  map[string]map[string]types.AttributeValue
	putErr error
}

func newTableMock() *tableMock {
	return &tableMock{items: map[string]map[string]types.AttributeValue{}}
}

func (m *tableMock) PutItem(_ context.Context, params *dyn.PutItemInput, _ ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return nil, m.putErr
	}

	key := params.Item["idempotency_key"].(*types.AttributeValueMemberS).Value
	if existing, ok := m.items[key]; ok && params.ConditionExpression != nil {
		now, _ := strconv.ParseInt(params.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN).Value, 10, 64)
		expires, _ := strconv.ParseInt(existing["expires_at"].(*types.AttributeValueMemberN).Value, 10, 64)
		if expires > now {
			return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
		}
	}
	m.items[key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *tableMock) GetItem(_ context.Context, params *dyn.GetItemInput, _ ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := params.Key["idempotency_key"].(*types.AttributeValueMemberS).Value
	return &dyn.GetItemOutput{Item: m.items[key]}, nil
}

func strPtr(s string) *string { return &s }

func TestStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("miss returns nil", func(t *testing.T) {
		store := NewStore(newTableMock(), "rma-idempotency")

		got, err := store.Get(ctx, "missing")
		if err != nil || got != nil {
			t.Fatalf("expected nil, nil; got %q, %v", got, err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		mock := newTableMock()
		store := NewStore(mock, "rma-idempotency").WithClock(func() time.Time { return base })

		stored, err := store.SetWithTTL(ctx, "k", []byte("payload"), time.Hour)
		if err != nil || !stored {
			t.Fatalf("expected stored, got %v, %v", stored, err)
		}

		ttlAttr := mock.items["k"]["expires_at"].(*types.AttributeValueMemberN).Value
		if ttlAttr != strconv.FormatInt(base.Add(time.Hour).Unix(), 10) {
			t.Errorf("unexpected expires_at %s", ttlAttr)
		}

		got, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if string(got) != "payload" {
			t.Errorf("unexpected value %q", got)
		}
	})

	t.Run("live key is not overwritten", func(t *testing.T) {
		store := NewStore(newTableMock(), "rma-idempotency").WithClock(func() time.Time { return base })

		_, _ = store.SetWithTTL(ctx, "k", []byte("first"), time.Hour)
		stored, err := store.SetWithTTL(ctx, "k", []byte("second"), time.Hour)
		if err != nil {
			t.Fatalf("expected conditional failure to be swallowed, got %v", err)
		}
		if stored {
			t.Error("expected second write to be rejected")
		}
	})

	t.Run("expired item reads as miss and can be replaced", func(t *testing.T) {
		mock := newTableMock()
		now := base
		store := NewStore(mock, "rma-idempotency").WithClock(func() time.Time { return now })

		_, _ = store.SetWithTTL(ctx, "k", []byte("old"), time.Minute)
		now = base.Add(2 * time.Minute)

		if got, _ := store.Get(ctx, "k"); got != nil {
			t.Fatalf("expected expired miss, got %q", got)
		}
		stored, err := store.SetWithTTL(ctx, "k", []byte("new"), time.Minute)
		if err != nil || !stored {
			t.Fatalf("expected write over expired item, got %v, %v", stored, err)
		}
	})

	t.Run("other errors are returned", func(t *testing.T) {
		mock := newTableMock()
		mock.putErr = errors.New("throttled")
		store := NewStore(mock, "rma-idempotency")

		if _, err := store.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err == nil {
			t.Error("expected error")
		}
	})
}
