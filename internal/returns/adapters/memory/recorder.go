package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// Recorder keeps submissions in memory. Useful for local development and tests.
type Recorder struct {
	mu          sync.RWMutex
	submissions []domain.Submission
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(_ context.Context, submission domain.Submission) error {
	submission.OrderIDLast4 = domain.OrderIDLast4(submission.OrderIDLast4)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, submission)
	return nil
}

// Submissions returns a copy of everything recorded so far, oldest first.
func (r *Recorder) Submissions() []domain.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Submission, len(r.submissions))
	copy(out, r.submissions)
	return out
}
