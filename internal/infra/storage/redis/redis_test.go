package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// commandsMock is a mock of commands.
type commandsMock struct {
	mock.Mock
}

func (_m *commandsMock) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	ret := _m.Called(ctx, key)
	return redis.NewMapStringStringResult(ret.Get(0).(map[string]string), ret.Error(1))
}

func (_m *commandsMock) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	ret := _m.Called(ctx, a)
	return redis.NewStringResult(ret.String(0), ret.Error(1))
}

func (_m *commandsMock) Close() error {
	return _m.Called().Error(0)
}

func newCommandsMock(t *testing.T) *commandsMock {
	m := &commandsMock{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func TestClient_LoadWatchList(t *testing.T) {
	t.Run("returns the hash entries", func(t *testing.T) {
		conn := newCommandsMock(t)
		entries := map[string]string{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa": "genesis"}
		conn.On("HGetAll", mock.Anything, "btcwatch:watchlist").Return(entries, nil).Once()

		got, err := (&client{conn: conn}).LoadWatchList(t.Context(), "btcwatch:watchlist")

		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("wraps redis errors", func(t *testing.T) {
		conn := newCommandsMock(t)
		redisErr := errors.New("connection refused")
		conn.On("HGetAll", mock.Anything, "btcwatch:watchlist").Return(map[string]string(nil), redisErr).Once()

		_, err := (&client{conn: conn}).LoadWatchList(t.Context(), "btcwatch:watchlist")

		assert.ErrorIs(t, err, redisErr)
		assert.Contains(t, err.Error(), "btcwatch:watchlist")
	})
}

func TestStream(t *testing.T) {
	t.Run("appends transactions as JSON entries", func(t *testing.T) {
		conn := newCommandsMock(t)

		var args *redis.XAddArgs
		conn.On("XAdd", mock.Anything, mock.Anything).
			Run(func(a mock.Arguments) { args = a.Get(1).(*redis.XAddArgs) }).
			Return("1713571800000-0", nil).Once()

		stream := (&client{conn: conn}).Stream("btcwatch:notifications")
		err := stream.NotifyTransaction(t.Context(), blockproc.Notification{ID: "id-1", TxID: "tx"})

		require.NoError(t, err)
		assert.Equal(t, "btcwatch:notifications", args.Stream)
		assert.Equal(t, int64(defaultStreamMaxLen), args.MaxLen)
		assert.True(t, args.Approx)

		values := args.Values.([]any)
		require.Len(t, values, 4)
		assert.Equal(t, "transaction", values[1])

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(values[3].(string)), &doc))
		assert.Equal(t, "id-1", doc["id"])
		assert.Equal(t, "tx", doc["txid"])
	})

	t.Run("appends system events", func(t *testing.T) {
		conn := newCommandsMock(t)
		conn.On("XAdd", mock.Anything, mock.MatchedBy(func(a *redis.XAddArgs) bool {
			values := a.Values.([]any)
			return values[1] == "system"
		})).Return("1-0", nil).Once()

		err := (&client{conn: conn}).Stream("s").NotifySystemEvent(t.Context(), blockproc.LevelWarn, "slow", nil)

		assert.NoError(t, err)
	})

	t.Run("returns redis failures", func(t *testing.T) {
		conn := newCommandsMock(t)
		redisErr := errors.New("OOM command not allowed")
		conn.On("XAdd", mock.Anything, mock.Anything).Return("", redisErr).Once()

		err := (&client{conn: conn}).Stream("s").NotifyTransaction(t.Context(), blockproc.Notification{})

		assert.ErrorIs(t, err, redisErr)
	})

	t.Run("ignores block metrics", func(t *testing.T) {
		conn := newCommandsMock(t)

		err := (&client{conn: conn}).Stream("s").NotifyMetrics(t.Context(), blockproc.Metrics{BlockHeight: 1})

		assert.NoError(t, err)
		conn.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
	})
}

func TestClient_Close(t *testing.T) {
	t.Run("closes the connection", func(t *testing.T) {
		conn := newCommandsMock(t)
		conn.On("Close").Return(nil).Once()

		assert.NoError(t, (&client{conn: conn}).Close())
	})
}

func TestNewClient(t *testing.T) {
	t.Run("returns error when redis is unreachable", func(t *testing.T) {
		_, err := NewClient(t.Context(), "127.0.0.1:1", "", "", 0)

		assert.Error(t, err)
	})
}
