// Package logbook records RMA submissions as structured log lines.
package logbook

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// Recorder writes one info line per submission. It never fails.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Record(ctx context.Context, submission domain.Submission) error {
	r.logger.InfoContext(ctx, "rma submission logged",
		"vendor", submission.Vendor,
		"order_id_last4", domain.OrderIDLast4(submission.OrderIDLast4),
		"intent", submission.Intent,
		"reason", submission.Reason,
		"msg_id", submission.MsgID,
	)
	return nil
}
