package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation a fixed number of times with a constant
// delay in between. OnRetry runs after the delay and before the next
// attempt; the uploader uses it to re-authenticate a store session whose
// credentials may have expired mid-run.
type Policy struct {
	// total attempts, including the first one
	Attempts int
	Delay    time.Duration
	OnRetry  func(ctx context.Context, attempt int, err error)
}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx
// is cancelled. The last error is returned on exhaustion. Wrap an error
// with backoff.Permanent to stop retrying early.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	bo := backoff.WithContext(backoff.NewConstantBackOff(p.Delay), ctx)

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var permanent *backoff.PermanentError
		if errors.As(lastErr, &permanent) {
			return permanent.Unwrap()
		}
		if attempt == p.Attempts {
			break
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return lastErr
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return lastErr
		}

		if p.OnRetry != nil {
			p.OnRetry(ctx, attempt, lastErr)
		}
	}
	return lastErr
}
