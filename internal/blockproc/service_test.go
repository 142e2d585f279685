package blockproc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/pkg/resilience/retry"
	walletwatchmocks "github.com/gabapcia/btcwatch/internal/walletwatch/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error")
}

// fastProbe fails quickly so probe failures do not slow the suite down.
func fastProbe() retry.Retry {
	return retry.New(retry.WithAttempts(2), retry.WithDelay(time.Millisecond), retry.WithMaxDelay(time.Millisecond))
}

func TestNew(t *testing.T) {
	t.Run("creates a stopped service with default configuration", func(t *testing.T) {
		svc := New(NewNodeMock(t), walletwatchmocks.NewService(t), NewNotifierMock(t))

		require.NotNil(t, svc)
		assert.Equal(t, defaultPollInterval, svc.pollInterval)
		assert.Equal(t, defaultMemoryLimitMB, svc.memoryLimitMB)
		assert.Nil(t, svc.prices)
		assert.NotNil(t, svc.probe)
		assert.NotNil(t, svc.tracer)
		assert.Equal(t, StateStopped, svc.state.Load())
	})

	t.Run("applies options", func(t *testing.T) {
		prices := NewPriceSourceMock(t)
		probe := fastProbe()

		svc := New(NewNodeMock(t), walletwatchmocks.NewService(t), NewNotifierMock(t),
			WithPollInterval(time.Second),
			WithMemoryLimitMB(256),
			WithPriceSource(prices),
			WithProbeRetry(probe),
		)

		assert.Equal(t, time.Second, svc.pollInterval)
		assert.Equal(t, 256, svc.memoryLimitMB)
		assert.Same(t, prices, svc.prices)
		assert.Equal(t, probe, svc.probe)
	})
}

func TestService_Start(t *testing.T) {
	t.Run("records the tip as watermark and runs until closed", func(t *testing.T) {
		node := NewNodeMock(t)
		detector := walletwatchmocks.NewService(t)
		notifier := NewNotifierMock(t)

		node.On("Ping", mock.Anything).Return(nil).Once()
		node.On("GetBlockCount", mock.Anything).Return(int64(840000), nil).Once()
		detector.EXPECT().Len().Return(3).Maybe()
		notifier.On("NotifySystemEvent", mock.Anything, LevelInfo, "block monitor started", mock.Anything).Return(nil).Once()
		notifier.On("NotifySystemEvent", mock.Anything, LevelInfo, "block monitor stopped", mock.Anything).Return(nil).Once()

		svc := New(node, detector, notifier, WithPollInterval(time.Hour), WithProbeRetry(fastProbe()))

		require.NoError(t, svc.Start(t.Context()))

		status := svc.Status()
		assert.Equal(t, StateRunning, status.State)
		assert.True(t, status.Running)
		assert.Equal(t, int64(840000), status.LastProcessedHeight)
		assert.Equal(t, 3, status.WatchedCount)

		svc.Close()

		status = svc.Status()
		assert.Equal(t, StateStopped, status.State)
		assert.False(t, status.Running)
		assert.Equal(t, int64(840000), status.LastProcessedHeight)
	})

	t.Run("returns error when already started", func(t *testing.T) {
		node := NewNodeMock(t)
		detector := walletwatchmocks.NewService(t)
		notifier := NewNotifierMock(t)

		node.On("Ping", mock.Anything).Return(nil).Once()
		node.On("GetBlockCount", mock.Anything).Return(int64(10), nil).Once()
		detector.EXPECT().Len().Return(1).Maybe()
		notifier.On("NotifySystemEvent", mock.Anything, LevelInfo, mock.Anything, mock.Anything).Return(nil)

		svc := New(node, detector, notifier, WithPollInterval(time.Hour), WithProbeRetry(fastProbe()))
		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		err := svc.Start(t.Context())

		assert.ErrorIs(t, err, ErrServiceAlreadyStarted)
	})

	t.Run("fails when the node does not answer the probe", func(t *testing.T) {
		node := NewNodeMock(t)
		probeErr := errors.New("connection refused")

		node.On("Ping", mock.Anything).Return(probeErr).Twice()

		svc := New(node, walletwatchmocks.NewService(t), NewNotifierMock(t), WithProbeRetry(fastProbe()))

		err := svc.Start(t.Context())

		assert.ErrorIs(t, err, ErrNodeUnreachable)
		assert.ErrorIs(t, err, probeErr)
		assert.Equal(t, StateStopped, svc.state.Load())
		node.AssertNotCalled(t, "GetBlockCount", mock.Anything)
	})

	t.Run("fails when the chain height cannot be read", func(t *testing.T) {
		node := NewNodeMock(t)
		heightErr := errors.New("warming up")

		node.On("Ping", mock.Anything).Return(nil).Once()
		node.On("GetBlockCount", mock.Anything).Return(int64(0), heightErr).Once()

		svc := New(node, walletwatchmocks.NewService(t), NewNotifierMock(t), WithProbeRetry(fastProbe()))

		err := svc.Start(t.Context())

		assert.ErrorIs(t, err, heightErr)
		assert.Equal(t, StateStopped, svc.state.Load())
	})

	t.Run("polls the node on every interval", func(t *testing.T) {
		node := NewNodeMock(t)
		detector := walletwatchmocks.NewService(t)
		notifier := NewNotifierMock(t)

		var heightReads atomic.Int32
		node.On("Ping", mock.Anything).Return(nil).Once()
		node.On("GetBlockCount", mock.Anything).
			Run(func(mock.Arguments) { heightReads.Add(1) }).
			Return(int64(500), nil)
		detector.EXPECT().Len().Return(1).Maybe()
		notifier.On("NotifySystemEvent", mock.Anything, LevelInfo, mock.Anything, mock.Anything).Return(nil)

		svc := New(node, detector, notifier, WithPollInterval(5*time.Millisecond), WithProbeRetry(fastProbe()))
		require.NoError(t, svc.Start(t.Context()))

		assert.Eventually(t, func() bool { return heightReads.Load() >= 3 }, time.Second, 5*time.Millisecond)

		svc.Close()
		assert.Equal(t, int64(500), svc.Status().LastProcessedHeight)
	})
}

func TestService_Close(t *testing.T) {
	t.Run("is safe on a service that never started", func(t *testing.T) {
		svc := New(NewNodeMock(t), walletwatchmocks.NewService(t), NewNotifierMock(t))

		assert.NotPanics(t, svc.Close)
		assert.Equal(t, StateStopped, svc.state.Load())
	})

	t.Run("keeps running when the stop event cannot be delivered", func(t *testing.T) {
		node := NewNodeMock(t)
		detector := walletwatchmocks.NewService(t)
		notifier := NewNotifierMock(t)

		node.On("Ping", mock.Anything).Return(nil).Once()
		node.On("GetBlockCount", mock.Anything).Return(int64(1), nil).Once()
		detector.EXPECT().Len().Return(1).Maybe()
		notifier.On("NotifySystemEvent", mock.Anything, LevelInfo, mock.Anything, mock.Anything).
			Return(errors.New("sink offline"))

		svc := New(node, detector, notifier, WithPollInterval(time.Hour), WithProbeRetry(fastProbe()))
		require.NoError(t, svc.Start(t.Context()))

		assert.NotPanics(t, svc.Close)
		assert.Equal(t, StateStopped, svc.Status().State)
	})
}

func TestService_Status(t *testing.T) {
	t.Run("reports watch-list size and memory usage", func(t *testing.T) {
		detector := walletwatchmocks.NewService(t)
		detector.EXPECT().Len().Return(7).Once()

		svc := New(NewNodeMock(t), detector, NewNotifierMock(t))
		svc.lastProcessed.Store(42)

		status := svc.Status()

		assert.Equal(t, StateStopped, status.State)
		assert.Equal(t, int64(42), status.LastProcessedHeight)
		assert.Equal(t, 7, status.WatchedCount)
		assert.Positive(t, status.MemoryMB)
	})
}

// stubPressure replaces heap inspection with a fixed reading.
func stubPressure(svc *service, p blockstream.Pressure) {
	svc.pressure = func(context.Context, int) blockstream.Pressure { return p }
}
