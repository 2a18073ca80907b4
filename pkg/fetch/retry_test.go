package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func fastHandler(maxRetries int) *RetryHandler {
	return NewRetryHandler(RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	})
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	calls := 0
	err := fastHandler(3).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "read", Err: errors.New("connection reset")}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	wantErr := errors.New("corrupt payload")
	err := fastHandler(5).Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, 1, calls)
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := fastHandler(2).Do(context.Background(), func() error {
		calls++
		return &net.OpError{Op: "dial", Err: errors.New("refused")}
	})
	require.Error(t, err)
	require.Equal(t, 3, calls) // initial attempt plus two retries
}

func TestRetryHonorsStorageStatusCodes(t *testing.T) {
	retryable := minio.ErrorResponse{StatusCode: http.StatusServiceUnavailable, Code: "SlowDown"}
	require.True(t, shouldRetry(retryable))

	denied := minio.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"}
	require.False(t, shouldRetry(denied))
}

func TestRetryDoesNotRetryCancellation(t *testing.T) {
	require.False(t, shouldRetry(context.Canceled))
	require.False(t, shouldRetry(context.DeadlineExceeded))
}

func TestRetryStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fastHandler(5).Do(ctx, func() error {
		return &net.OpError{Op: "read", Err: errors.New("reset")}
	})
	require.ErrorIs(t, err, context.Canceled)
}
