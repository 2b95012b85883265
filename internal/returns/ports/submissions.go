package ports

import (
	"context"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// SubmissionRecorder keeps the audit trail of sent RMA requests.
type SubmissionRecorder interface {
	Record(ctx context.Context, submission domain.Submission) error
}
