package adapters

import (
	"context"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
	"github.com/dejobratic/rmaflow/internal/telemetry"
)

type ObservableRecorder struct {
	recorder ports.SubmissionRecorder
	metrics  *metrics.Metrics
}

func NewObservableRecorder(recorder ports.SubmissionRecorder, metrics *metrics.Metrics) *ObservableRecorder {
	return &ObservableRecorder{
		recorder: recorder,
		metrics:  metrics,
	}
}

func (r *ObservableRecorder) Record(ctx context.Context, submission domain.Submission) error {
	ctx, span := telemetry.StartSpan(ctx, "SubmissionRecorder.Record")

	telemetry.AddSpanAttributes(span,
		telemetry.AttrVendor.String(submission.Vendor),
		telemetry.AttrIntent.String(string(submission.Intent)),
	)

	err := r.recorder.Record(ctx, submission)
	if err == nil {
		r.metrics.RecordSubmissionLogged(ctx, submission.Vendor, string(submission.Intent))
	}

	telemetry.EndSpan(span, err)
	return err
}
