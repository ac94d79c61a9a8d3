// Package retryx provides a bounded, constant-backoff retry helper for
// operations that are expected to hit transient contention on shared
// resources (row locks, busy databases).
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy describes how often and how patiently an operation is retried.
// The operation runs once and then up to MaxRetries more times, sleeping
// Backoff between attempts.
type Policy struct {
	MaxRetries uint64
	Backoff    time.Duration
}

// DefaultDeletePolicy is the contention policy used for attachment row deletes:
// 1 attempt + 10 retries, 500ms apart.
var DefaultDeletePolicy = Policy{MaxRetries: 10, Backoff: 500 * time.Millisecond}

// Attempts returns the total number of calls the policy allows.
func (p Policy) Attempts() uint64 {
	return p.MaxRetries + 1
}

func (p Policy) backoff() retry.Backoff {
	d := p.Backoff
	if d <= 0 {
		// go-retry refuses a zero interval
		d = time.Nanosecond
	}
	return retry.WithMaxRetries(p.MaxRetries, retry.NewConstant(d))
}

// RetryFunc is the unit of work retried by Do.
type RetryFunc func(ctx context.Context) error

// OnRetry is invoked after a failed attempt that will be followed by another
// one. attempt is 1-based, retriesLeft counts the retries still available.
type OnRetry func(attempt, retriesLeft uint64, err error)

// Do runs fn under policy p. Every error returned by fn is considered
// transient. When all attempts fail, the error of the last attempt is
// returned as is. A cancelled ctx stops the loop and returns ctx.Err().
func Do(ctx context.Context, p Policy, fn RetryFunc, onRetry OnRetry) error {
	var attempt uint64

	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt <= p.MaxRetries && onRetry != nil {
			onRetry(attempt, p.MaxRetries-attempt, err)
		}
		return retry.RetryableError(err)
	})
}
