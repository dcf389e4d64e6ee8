package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxRetries: 2, RetryDelay: 10 * time.Millisecond, Multiplier: 2}

	attempts := 0
	start := time.Now()
	err := Run(context.Background(), p, time.Second, func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	// Two waits: base delay plus doubled delay.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRunExhaustsRetries(t *testing.T) {
	p := Policy{MaxRetries: 2, RetryDelay: time.Millisecond, Multiplier: 2}

	attempts := 0
	last := errors.New("still broken")
	err := Run(context.Background(), p, time.Second, func(_ context.Context) error {
		attempts++
		return last
	})

	assert.ErrorIs(t, err, last)
	assert.Equal(t, 3, attempts)
}

func TestRunPermanentErrorNotRetried(t *testing.T) {
	p := Policy{MaxRetries: 3, RetryDelay: time.Millisecond, Multiplier: 2}

	attempts := 0
	boom := errors.New("bad status")
	err := Run(context.Background(), p, time.Second, func(_ context.Context) error {
		attempts++
		return Permanent(boom)
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestRunTimesOut(t *testing.T) {
	start := time.Now()
	err := Run(context.Background(), NoRetry(), 50*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunParentCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, NoRetry(), time.Second, func(ctx context.Context) error {
		return ctx.Err()
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimedOut)
}

func TestRunZeroTimeoutMeansNoBudget(t *testing.T) {
	err := Run(context.Background(), NoRetry(), 0, func(_ context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, uint64(DefaultMaxRetries), p.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, p.RetryDelay)
	assert.Equal(t, DefaultMultiplier, p.Multiplier)
}
