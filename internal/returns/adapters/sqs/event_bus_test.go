package sqs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/dejobratic/rmaflow/internal/returns/adapters/sqs"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

type mockSQS struct {
	inputs []*awssqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &awssqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestEventBus(t *testing.T) {
	event := ports.WorkflowEvent{
		Vendor:       "target",
		OrderIDLast4: "3456",
		Intent:       domain.IntentReplacement,
		Reason:       domain.ReasonWrongItem,
		Status:       domain.StatusFailed,
		Error:        "smtp unavailable",
	}

	t.Run("sends failed events to the queue", func(t *testing.T) {
		client := &mockSQS{}
		bus := sqs.NewEventBus(client, "https://sqs.us-east-1.amazonaws.com/123/rma-events")

		if err := bus.PublishWorkflowFailed(context.Background(), event); err != nil {
			t.Fatalf("PublishWorkflowFailed() failed: %v", err)
		}

		if len(client.inputs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(client.inputs))
		}
		in := client.inputs[0]
		if aws.ToString(in.QueueUrl) != "https://sqs.us-east-1.amazonaws.com/123/rma-events" {
			t.Errorf("unexpected queue %q", aws.ToString(in.QueueUrl))
		}
		if aws.ToString(in.MessageAttributes["event_type"].StringValue) != ports.EventWorkflowFailed {
			t.Errorf("unexpected event type attribute")
		}
		var got ports.WorkflowEvent
		if err := json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.OrderIDLast4 != "3456" || got.Error != "smtp unavailable" {
			t.Errorf("unexpected body %+v", got)
		}
	})

	t.Run("wraps client errors", func(t *testing.T) {
		throttled := errors.New("ThrottlingException")
		bus := sqs.NewEventBus(&mockSQS{err: throttled}, "queue")

		if err := bus.PublishWorkflowCompleted(context.Background(), event); !errors.Is(err, throttled) {
			t.Errorf("expected wrapped client error, got %v", err)
		}
	})
}
