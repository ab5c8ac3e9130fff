package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientFailure(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &RetryableError{StatusCode: 429, Message: "rate limited"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return &RetryableError{StatusCode: 503, Message: "unavailable"}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var retryErr *RetryableError
	assert.ErrorAs(t, err, &retryErr)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	wantErr := errors.New("invalid model name")
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Policy{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Minute}.Do(ctx, func() error {
		calls++
		return &RetryableError{StatusCode: 429}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	for attempt := 0; attempt < 8; attempt++ {
		d := p.Backoff(attempt)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond, "attempt %d", attempt)
		// Cap plus at most half the cap of jitter.
		assert.LessOrEqual(t, d, 450*time.Millisecond, "attempt %d", attempt)
	}

	// Exponent growth without the cap in the way.
	wide := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Hour}
	assert.GreaterOrEqual(t, wide.Backoff(3), 800*time.Millisecond)
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		&RetryableError{StatusCode: 429},
		fmt.Errorf("wrap: %w", &RetryableError{StatusCode: 500}),
		errors.New("429 Too Many Requests"),
		errors.New("rate limit exceeded"),
		errors.New("dial tcp: connection refused"),
		errors.New("read: connection reset by peer"),
		errors.New("unexpected EOF"),
		errors.New("ollama returned status 503"),
	}
	for _, err := range retryable {
		assert.True(t, IsRetryable(err), "%v", err)
	}

	permanent := []error{
		nil,
		context.Canceled,
		context.DeadlineExceeded,
		errors.New("model not found"),
		errors.New("file format not supported"),
	}
	for _, err := range permanent {
		assert.False(t, IsRetryable(err), "%v", err)
	}
}
