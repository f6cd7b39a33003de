package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/search-probe/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		IsRetryable:  retry.Always,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Retry(context.Background(), fastConfig(5), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cause := errors.New("still failing")
	calls := 0
	err := retry.Retry(context.Background(), fastConfig(3), func() error {
		calls++
		return cause
	})

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	cfg := fastConfig(5)
	cfg.IsRetryable = retry.DefaultIsRetryable

	calls := 0
	err := retry.Retry(context.Background(), cfg, func() error {
		calls++
		return errors.New("mapper_parsing_exception")
	})

	require.Error(t, err)
	require.NotErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Retry(ctx, fastConfig(3), func() error {
		t.Fatal("fn must not run with a cancelled context")
		return nil
	})
	require.ErrorIs(t, err, retry.ErrContextCancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefaultIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp 127.0.0.1:9200: connect: connection refused"), true},
		{errors.New("context deadline exceeded"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("Post \"http://es\": i/o timeout"), true},
		{errors.New("index_not_found_exception"), false},
	}

	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, retry.DefaultIsRetryable(tt.err), "%v", tt.err)
	}
}

func TestConfig_Delay(t *testing.T) {
	t.Parallel()

	cfg := retry.Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, 800*time.Millisecond, cfg.Delay(4))
	assert.Equal(t, time.Second, cfg.Delay(5))
}
