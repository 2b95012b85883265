package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dejobratic/rmaflow/internal/database"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// SubmissionRepository writes the RMA audit trail to rma_submissions.
type SubmissionRepository struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

func NewSubmissionRepository(pool *pgxpool.Pool, metrics *database.Metrics) *SubmissionRepository {
	return &SubmissionRepository{pool: pool, metrics: metrics}
}

func (r *SubmissionRepository) Record(ctx context.Context, submission domain.Submission) error {
	query := `
		INSERT INTO rma_submissions (id, vendor, order_id_last4, intent, reason, msg_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`

	start := time.Now()
	_, err := r.pool.Exec(ctx, query,
		uuid.New(),
		submission.Vendor,
		domain.OrderIDLast4(submission.OrderIDLast4),
		string(submission.Intent),
		string(submission.Reason),
		submission.MsgID,
		time.Now().UTC(),
	)
	r.metrics.RecordQuery(ctx, database.TableRmaSubmissions, "insert", start, err)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

// ListRecent returns the newest submissions for vendor, newest first.
func (r *SubmissionRepository) ListRecent(ctx context.Context, vendor string, limit int) ([]domain.Submission, error) {
	query := `
		SELECT vendor, order_id_last4, intent, reason, COALESCE(msg_id, '')
		FROM rma_submissions
		WHERE vendor = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	start := time.Now()
	rows, err := r.pool.Query(ctx, query, vendor, limit)
	r.metrics.RecordQuery(ctx, database.TableRmaSubmissions, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.Vendor, &s.OrderIDLast4, &s.Intent, &s.Reason, &s.MsgID); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return out, nil
}
