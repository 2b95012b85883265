package ports

import (
	"context"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

const (
	EventWorkflowCompleted = "rma.workflow.completed"
	EventWorkflowFailed    = "rma.workflow.failed"
)

// WorkflowEvent announces the outcome of one workflow run. It never carries the full
// order id or any contact detail.
type WorkflowEvent struct {
	Type         string                `json:"type"`
	Vendor       string                `json:"vendor"`
	OrderIDLast4 string                `json:"order_id_last4"`
	Intent       domain.Intent         `json:"intent"`
	Reason       domain.Reason         `json:"reason"`
	Status       domain.WorkflowStatus `json:"status"`
	MessageID    string                `json:"msg_id,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// EventBus defines the contract for publishing workflow outcome events.
type EventBus interface {
	PublishWorkflowCompleted(ctx context.Context, event WorkflowEvent) error
	PublishWorkflowFailed(ctx context.Context, event WorkflowEvent) error
}
