package queries

import (
	"context"
	"time"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// WorkflowStatusInfo describes the workflow engine's fixed limits.
type WorkflowStatusInfo struct {
	Status           string   `json:"status"`
	MaxExecutionTime int      `json:"max_execution_time"`
	MaxRetries       int      `json:"max_retries"`
	SupportedVendors []string `json:"supported_vendors"`
}

type GetWorkflowStatusQueryHandler struct {
	directory   *domain.Directory
	timeout     time.Duration
	maxAttempts int
}

func NewGetWorkflowStatusQueryHandler(directory *domain.Directory, timeout time.Duration, maxAttempts int) *GetWorkflowStatusQueryHandler {
	return &GetWorkflowStatusQueryHandler{
		directory:   directory,
		timeout:     timeout,
		maxAttempts: maxAttempts,
	}
}

func (h *GetWorkflowStatusQueryHandler) Handle(_ context.Context) WorkflowStatusInfo {
	return WorkflowStatusInfo{
		Status:           "operational",
		MaxExecutionTime: int(h.timeout / time.Second),
		MaxRetries:       h.maxAttempts,
		SupportedVendors: h.directory.Supported(),
	}
}
