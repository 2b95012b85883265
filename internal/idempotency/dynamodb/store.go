package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// API is the subset of the DynamoDB client the store needs.
type API interface {
	GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error)
	PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error)
}

// record is the item shape. expires_at doubles as the table TTL attribute.
type record struct {
	Key       string `dynamodbav:"idempotency_key"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// Store keeps idempotency values in a DynamoDB table keyed by idempotency_key.
type Store struct {
	client    API
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client API, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// WithClock returns a copy of s that reads time from now.
func (s *Store) WithClock(now func() time.Time) *Store {
	clone := *s
	clone.nowFunc = now
	return &clone
}

// Get reads the item consistently. DynamoDB TTL deletion is lazy, so expiry is checked here too.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      aws.String(s.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	if rec.ExpiresAt <= s.nowFunc().Unix() {
		return nil, nil
	}
	return rec.Value, nil
}

// SetWithTTL writes the item only when the key is absent or already expired.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	now := s.nowFunc()
	expiresAt := now.Add(ttl).Unix()
	if expiresAt <= now.Unix() {
		expiresAt = now.Unix() + 1
	}

	item, err := attributevalue.MarshalMap(record{Key: key, Value: value, ExpiresAt: expiresAt})
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(idempotency_key) OR expires_at <= :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}
