// Package retry wraps the persistence retry policy used inside a
// pipeline run: exponential backoff starting at 500ms, doubling up to
// 2s, over a fixed budget of 3 retries before the error surfaces as
// fatal.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	initialInterval = 500 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxRetries      = 3
)

// Do runs op, retrying transient failures per the fixed policy.
// Cancellation of ctx stops further attempts and returns ctx.Err().
func Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
}

// Permanent marks err as non-retryable; Do returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
