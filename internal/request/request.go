// Package request bounds backend calls with timeouts and retry.
package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrTimedOut marks a call that exceeded its time budget. Callers use it to
// show timeout-specific messaging instead of a generic failure.
var ErrTimedOut = errors.New("timed out")

// Defaults for the backend retry contract.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	DefaultMultiplier = 2.0
)

// Policy bounds how many times a call is re-attempted and how long to wait
// between attempts. The delay doubles each attempt: 1s, 2s, 4s by default.
type Policy struct {
	MaxRetries uint64
	RetryDelay time.Duration
	Multiplier float64
}

// DefaultPolicy returns the standard backend policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		Multiplier: DefaultMultiplier,
	}
}

// NoRetry returns a policy that allows only the initial attempt.
func NoRetry() Policy {
	return Policy{MaxRetries: 0, RetryDelay: DefaultRetryDelay, Multiplier: DefaultMultiplier}
}

// Permanent marks err so that Run will not retry it. Non-success HTTP
// statuses are permanent; only transport-level failures are retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Run executes fn under a single timeout budget that spans all attempts.
// Transport errors are retried per the policy with deterministic exponential
// delays; the last error is returned once attempts run out. A deadline hit
// is reported as ErrTimedOut, distinguishable from other failures.
func Run(ctx context.Context, p Policy, timeout time.Duration, fn func(ctx context.Context) error) error {
	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.RetryDelay
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxInterval = 24 * time.Hour
	bo.MaxElapsedTime = 0

	err := backoff.Retry(func() error {
		return fn(callCtx)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxRetries), callCtx))

	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s: %v", ErrTimedOut, timeout, err)
	}
	return err
}
