package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/userboard/types"
)

func fastPolicy(maxRetries int) *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestBackoffRetryer_SucceedsFirstAttempt(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(3), nil)
	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_ExactAttemptBound(t *testing.T) {
	// max_retries=3 means one initial attempt plus three retries: 4 total.
	r := NewBackoffRetryer(fastPolicy(3), nil)
	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestBackoffRetryer_RecoversMidway(t *testing.T) {
	r := NewBackoffRetryer(fastPolicy(3), nil)
	calls := 0
	result, err := r.DoWithResult(context.Background(), func() (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestBackoffRetryer_FatalErrorStopsImmediately(t *testing.T) {
	p := fastPolicy(3)
	p.Retryable = types.IsRetryable
	r := NewBackoffRetryer(p, nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return types.NewError(types.ErrAuthentication, "bad key")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, types.ErrAuthentication, types.GetErrorCode(err))
}

func TestBackoffRetryer_RetryableErrorIsRetried(t *testing.T) {
	p := fastPolicy(2)
	p.Retryable = types.IsRetryable
	r := NewBackoffRetryer(p, nil)

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return types.NewError(types.ErrRateLimited, "slow down").WithRetryable(true)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestBackoffRetryer_ContextCancelDuringDelay(t *testing.T) {
	p := &RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}
	r := NewBackoffRetryer(p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, func() error {
		calls++
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_OnRetryCallback(t *testing.T) {
	var attempts []int
	p := fastPolicy(2)
	p.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}
	r := NewBackoffRetryer(p, nil)
	_ = r.Do(context.Background(), func() error { return errors.New("transient") })
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestCalculateDelay_Bounds(t *testing.T) {
	p := &RetryPolicy{
		MaxRetries:   5,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     80 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
	}
	r := NewBackoffRetryer(p, nil).(*backoffRetryer)
	for attempt := 1; attempt <= 10; attempt++ {
		d := r.calculateDelay(attempt)
		assert.GreaterOrEqual(t, d, p.InitialDelay)
		// Jitter can push at most 25% above the ceiling.
		assert.LessOrEqual(t, d, p.MaxDelay+p.MaxDelay/4)
	}
}
