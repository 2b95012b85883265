package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kgo "github.com/segmentio/kafka-go"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// DefaultWriteTimeout bounds one publish so a down broker cannot stall a request.
const DefaultWriteTimeout = 3 * time.Second

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// Publisher writes workflow events to one Kafka topic as JSON. Messages are keyed by
// vendor and order id tail so events for one order stay on one partition.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// writerBatchTimeout bounds how long a synchronous write waits for a batch to fill.
// Events are published on the request path, one at a time.
const writerBatchTimeout = 10 * time.Millisecond

// NewWriter builds a kafka-go writer for topic.
func NewWriter(brokers []string, topic string) *kgo.Writer {
	return &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
		BatchTimeout: writerBatchTimeout,
	}
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, timeout: DefaultWriteTimeout}
}

func (p *Publisher) PublishWorkflowCompleted(ctx context.Context, event ports.WorkflowEvent) error {
	event.Type = ports.EventWorkflowCompleted
	return p.publish(ctx, event)
}

func (p *Publisher) PublishWorkflowFailed(ctx context.Context, event ports.WorkflowEvent) error {
	event.Type = ports.EventWorkflowFailed
	return p.publish(ctx, event)
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, event ports.WorkflowEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kgo.Message{
		Key:   []byte(event.Vendor + ":" + event.OrderIDLast4),
		Value: value,
		Time:  time.Now(),
		Headers: []kgo.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}
	return nil
}
