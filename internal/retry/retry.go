// Package retry implements the exponential-backoff-with-jitter policy
// shared by every outbound call the core makes to the seller API
// adapter.
package retry

import (
	"context"
	"math/rand/v2"
	"time"
)

// Options configures WithRetry.
type Options struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
	// OnRetry, if set, is invoked before each wait with the attempt
	// number that just failed (1-indexed), the delay about to be slept,
	// and the error that caused the retry.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultOptions returns the policy documented for the retry engine:
// 5 attempts, 500ms base delay, 10s max delay, 25% jitter.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:    5,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		JitterFraction: 0.25,
	}
}

// delayForAttempt computes the delay before attempt n (1-indexed),
// without jitter: min(maxDelay, baseDelay * 2^(n-1)).
func delayForAttempt(opts Options, n int) time.Duration {
	d := opts.BaseDelay << (n - 1)
	if d <= 0 || d > opts.MaxDelay {
		return opts.MaxDelay
	}
	return d
}

func jitter(opts Options, base time.Duration) time.Duration {
	if opts.JitterFraction <= 0 || base <= 0 {
		return base
	}
	maxJitter := float64(base) * opts.JitterFraction
	if maxJitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Float64()*maxJitter)
}

// WithRetry invokes fn until it succeeds, opts.MaxAttempts is exhausted,
// or ctx is cancelled. On final failure it returns the last error fn
// produced.
func WithRetry[T any](ctx context.Context, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	if opts.MaxAttempts <= 0 {
		opts = DefaultOptions()
	}

	var zero T
	var lastErr error

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == opts.MaxAttempts || !IsRetryableError(err) {
			return zero, lastErr
		}

		delay := jitter(opts, delayForAttempt(opts, attempt))
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, delay, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
