// Package sqs publishes workflow events to an Amazon SQS queue.
package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// API is the part of the SQS client the event bus uses.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// EventBus sends each workflow event as one JSON message with its type as a message
// attribute.
type EventBus struct {
	client   API
	queueURL string
}

func NewEventBus(client API, queueURL string) *EventBus {
	return &EventBus{client: client, queueURL: queueURL}
}

func (b *EventBus) PublishWorkflowCompleted(ctx context.Context, event ports.WorkflowEvent) error {
	event.Type = ports.EventWorkflowCompleted
	return b.send(ctx, event)
}

func (b *EventBus) PublishWorkflowFailed(ctx context.Context, event ports.WorkflowEvent) error {
	event.Type = ports.EventWorkflowFailed
	return b.send(ctx, event)
}

func (b *EventBus) send(ctx context.Context, event ports.WorkflowEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	_, err = b.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(b.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
			"vendor": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Vendor),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s message: %w", event.Type, err)
	}
	return nil
}
