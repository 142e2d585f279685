package nats

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gabapcia/btcwatch/internal/blockproc"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/walletwatch"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error")
}

// connMock is a mock of conn.
type connMock struct {
	mock.Mock
}

func (_m *connMock) Publish(subject string, data []byte) error {
	return _m.Called(subject, data).Error(0)
}

func (_m *connMock) Drain() error {
	return _m.Called().Error(0)
}

func newConnMock(t *testing.T) *connMock {
	m := &connMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var publishedAt = time.Date(2024, 4, 20, 0, 10, 0, 0, time.UTC)

func newTestPublisher(c conn) *Publisher {
	p := newPublisher(c, "btcwatch")
	p.now = func() time.Time { return publishedAt }
	return p
}

// captured decodes the payload of the only Publish call.
func captured(t *testing.T, c *connMock) (string, map[string]any) {
	t.Helper()

	require.Len(t, c.Calls, 1)
	subject := c.Calls[0].Arguments.String(0)

	var body map[string]any
	require.NoError(t, json.Unmarshal(c.Calls[0].Arguments.Get(1).([]byte), &body))

	return subject, body
}

func TestPublisher_NotifyTransaction(t *testing.T) {
	t.Run("publishes the notification as JSON", func(t *testing.T) {
		c := newConnMock(t)
		c.On("Publish", "btcwatch.transaction", mock.Anything).Return(nil).Once()

		err := newTestPublisher(c).NotifyTransaction(t.Context(), blockproc.Notification{
			ID:              "id-1",
			BlockHeight:     840000,
			TxID:            "tx",
			TransactionType: walletwatch.TransactionIncoming,
			TotalBTC:        decimal.RequireFromString("0.5"),
		})
		require.NoError(t, err)

		subject, body := captured(t, c)
		assert.Equal(t, "btcwatch.transaction", subject)
		assert.Equal(t, "transaction", body["type"])
		assert.Equal(t, "2024-04-20T00:10:00Z", body["timestamp"])

		data := body["data"].(map[string]any)
		assert.Equal(t, "id-1", data["id"])
		assert.Equal(t, "tx", data["txid"])
		assert.Equal(t, "incoming", data["transactionType"])
		assert.Equal(t, "0.5", data["totalBTC"])
		assert.NotContains(t, data, "totalUSD")
	})

	t.Run("wraps publish failures", func(t *testing.T) {
		c := newConnMock(t)
		publishErr := errors.New("nats: connection closed")
		c.On("Publish", mock.Anything, mock.Anything).Return(publishErr).Once()

		err := newTestPublisher(c).NotifyTransaction(t.Context(), blockproc.Notification{})

		assert.ErrorIs(t, err, publishErr)
		assert.Contains(t, err.Error(), "publishing transaction event")
	})
}

func TestPublisher_NotifySystemEvent(t *testing.T) {
	t.Run("publishes level, message and metadata", func(t *testing.T) {
		c := newConnMock(t)
		c.On("Publish", "btcwatch.system", mock.Anything).Return(nil).Once()

		err := newTestPublisher(c).NotifySystemEvent(t.Context(), blockproc.LevelError, "block processing failed", map[string]any{"block.height": 7})
		require.NoError(t, err)

		_, body := captured(t, c)
		data := body["data"].(map[string]any)
		assert.Equal(t, "error", data["level"])
		assert.Equal(t, "block processing failed", data["message"])
		assert.Equal(t, map[string]any{"block.height": float64(7)}, data["metadata"])
	})
}

func TestPublisher_NotifyMetrics(t *testing.T) {
	t.Run("publishes block metrics", func(t *testing.T) {
		c := newConnMock(t)
		c.On("Publish", "btcwatch.metrics", mock.Anything).Return(nil).Once()

		err := newTestPublisher(c).NotifyMetrics(t.Context(), blockproc.Metrics{BlockHeight: 9, TxCount: 3})
		require.NoError(t, err)

		_, body := captured(t, c)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(9), data["blockHeight"])
		assert.Equal(t, float64(3), data["txCount"])
	})
}

func TestPublisher_Close(t *testing.T) {
	t.Run("drains the connection", func(t *testing.T) {
		c := newConnMock(t)
		c.On("Drain").Return(nil).Once()

		assert.NoError(t, newTestPublisher(c).Close())
	})
}

func TestConnect(t *testing.T) {
	t.Run("returns error when no server is reachable", func(t *testing.T) {
		_, err := Connect("nats://127.0.0.1:1", "btcwatch")

		assert.Error(t, err)
	})
}
