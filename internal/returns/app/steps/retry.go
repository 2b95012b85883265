package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// ErrMaxRetriesExceeded marks a send that failed on every allowed attempt.
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// RetryPolicy bounds a send: at most MaxAttempts tries with Pause between them.
type RetryPolicy struct {
	MaxAttempts int
	Pause       time.Duration
}

// DefaultRetryPolicy is two attempts one second apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Pause: time.Second}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// SendFunc performs one delivery attempt.
type SendFunc func(ctx context.Context) (ports.SendResult, error)

// SendWithRetry calls send until it reports OK or the policy is exhausted.
// Expected failures (OK=false), errors and panics all count as a failed attempt.
// On exhaustion the returned result carries the last failure reason and the error wraps
// ErrMaxRetriesExceeded together with the last failure. A cancelled ctx stops retrying and
// its error is returned instead.
func SendWithRetry(ctx context.Context, policy RetryPolicy, logger *slog.Logger, operation string, send SendFunc) (ports.SendResult, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Pause), uint64(policy.attempts()-1)),
		ctx,
	)

	var (
		result  ports.SendResult
		lastErr error
		attempt int
	)

	op := func() error {
		attempt++
		res, err := safeSend(ctx, send)
		if err != nil {
			lastErr = err
			return err
		}
		if !res.OK {
			reason := res.Reason
			if reason == "" {
				reason = operation + " reported failure"
			}
			lastErr = errors.New(reason)
			return lastErr
		}
		result = res
		return nil
	}

	notify := func(err error, next time.Duration) {
		logger.WarnContext(ctx, "send attempt failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"retry_in", next,
			"error", err,
		)
	}

	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ports.NotSent(ctxErr.Error()), fmt.Errorf("%s: %w", operation, ctxErr)
	}
	if lastErr == nil {
		lastErr = err
	}
	return ports.NotSent(lastErr.Error()), fmt.Errorf("%s after %d attempts: %w: %w", operation, attempt, ErrMaxRetriesExceeded, lastErr)
}

func safeSend(ctx context.Context, send SendFunc) (res ports.SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during send: %v", r)
		}
	}()
	return send(ctx)
}
