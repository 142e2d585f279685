package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Execute(t *testing.T) {
	t.Run("successful operation runs once", func(t *testing.T) {
		r := New()
		callCount := 0

		err := r.Execute(t.Context(), func() error {
			callCount++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, callCount)
	})

	t.Run("retries until the operation succeeds", func(t *testing.T) {
		r := New(WithDelay(time.Millisecond))
		callCount := 0

		err := r.Execute(t.Context(), func() error {
			callCount++
			if callCount < 2 {
				return errors.New("connection refused")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, callCount)
	})

	t.Run("returns the last error once attempts are exhausted", func(t *testing.T) {
		r := New(
			WithAttempts(3),
			WithDelay(time.Millisecond),
			WithMaxDelay(5*time.Millisecond),
		)
		callCount := 0
		expectedErr := errors.New("node unreachable")

		err := r.Execute(t.Context(), func() error {
			callCount++
			return expectedErr
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.Equal(t, 3, callCount)
	})

	t.Run("does not retry errors rejected by the predicate", func(t *testing.T) {
		permanent := errors.New("unauthorized")
		r := New(
			WithDelay(time.Millisecond),
			WithRetryIf(func(err error) bool { return !errors.Is(err, permanent) }),
		)
		callCount := 0

		err := r.Execute(t.Context(), func() error {
			callCount++
			return permanent
		})

		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, callCount)
	})

	t.Run("reports failed attempts to the retry callback", func(t *testing.T) {
		var attempts []uint
		r := New(
			WithDelay(time.Millisecond),
			WithOnRetry(func(attempt uint, err error) {
				attempts = append(attempts, attempt)
			}),
		)
		callCount := 0

		err := r.Execute(t.Context(), func() error {
			callCount++
			if callCount == 1 {
				return errors.New("timeout")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, []uint{0}, attempts)
	})

	t.Run("stops waiting when the context is canceled", func(t *testing.T) {
		r := New(
			WithAttempts(5),
			WithDelay(200*time.Millisecond),
		)
		callCount := 0

		ctx, cancel := context.WithCancel(t.Context())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := r.Execute(ctx, func() error {
			callCount++
			return errors.New("connection refused")
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, callCount)
	})
}

func TestNew(t *testing.T) {
	t.Run("uses default options", func(t *testing.T) {
		r, ok := New().(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(3), r.cfg.attempts)
		assert.Equal(t, time.Second, r.cfg.delay)
		assert.Equal(t, 5*time.Second, r.cfg.maxDelay)
		assert.True(t, r.cfg.lastErrOnly)
		assert.True(t, r.cfg.retryIf(errors.New("any")))
	})

	t.Run("applies custom options", func(t *testing.T) {
		r, ok := New(
			WithAttempts(5),
			WithDelay(2*time.Second),
			WithMaxDelay(10*time.Second),
			WithLastErrorOnly(false),
		).(*retrier)
		require.True(t, ok)

		assert.Equal(t, uint(5), r.cfg.attempts)
		assert.Equal(t, 2*time.Second, r.cfg.delay)
		assert.Equal(t, 10*time.Second, r.cfg.maxDelay)
		assert.False(t, r.cfg.lastErrOnly)
	})
}
