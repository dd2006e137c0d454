package worker

import (
	"context"
	"time"
)

// maxAttempts is how many times a handler tries a flaky step before the job
// is given up and moved to the dead letter queue.
const maxAttempts = 3

// backoffUnit is the first retry delay; it doubles on every attempt.
var backoffUnit = time.Second

// pollErrorBackoff is how long a worker waits after a failed queue poll.
var pollErrorBackoff = time.Second

// withRetry calls fn up to attempts times with exponential backoff
// (immediate, 1s, 2s, ...). Returns nil if any attempt succeeds; the last
// error otherwise.
func withRetry(ctx context.Context, attempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			wait := backoffUnit << uint(i-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
