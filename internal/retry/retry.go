// Package retry runs a fallible operation with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
)

type options struct {
	maxRetries   int
	initialDelay time.Duration
	retryable    func(error) bool
	timer        backoff.Timer
	notify       backoff.Notify
}

type Option func(*options)

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

func WithInitialDelay(d time.Duration) Option {
	return func(o *options) { o.initialDelay = d }
}

// WithRetryable limits which errors are worth another attempt. By default
// every error is retried.
func WithRetryable(fn func(error) bool) Option {
	return func(o *options) { o.retryable = fn }
}

// WithTimer replaces the wall-clock timer used between attempts.
func WithTimer(t backoff.Timer) Option {
	return func(o *options) { o.timer = t }
}

func WithNotify(fn backoff.Notify) Option {
	return func(o *options) { o.notify = fn }
}

// Do calls op up to maxRetries+1 times. The delay before retry k (0-based) is
// initialDelay*2^k. Only the last error returned by op is returned, also
// when ctx is cancelled between attempts.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	o := options{
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
		retryable:    func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries < 0 {
		o.maxRetries = 0
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = o.initialDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(o.maxRetries)), ctx)

	var lastErr error
	v, err := backoff.RetryNotifyWithTimerAndData(func() (T, error) {
		v, err := op(ctx)
		lastErr = err
		if err != nil && !o.retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b, o.notify, o.timer)
	if err != nil && lastErr != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return v, lastErr
	}
	return v, err
}
