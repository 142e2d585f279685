package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	redis "github.com/redis/go-redis/v9"
)

// defaultStreamMaxLen bounds the notification stream. Trimming is approximate.
const defaultStreamMaxLen = 100_000

// Stream appends notifications to a Redis stream. Each entry has a "type"
// field and a "data" field holding the JSON document.
type Stream struct {
	client *client
	key    string
	maxLen int64
}

var _ blockproc.Notifier = (*Stream)(nil)

// Stream returns a notifier writing to the stream at key.
func (c *client) Stream(key string) *Stream {
	return &Stream{
		client: c,
		key:    key,
		maxLen: defaultStreamMaxLen,
	}
}

func (s *Stream) add(ctx context.Context, kind string, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s entry: %w", kind, err)
	}

	err = s.client.conn.XAdd(ctx, &redis.XAddArgs{
		Stream: s.key,
		MaxLen: s.maxLen,
		Approx: true,
		Values: []any{"type", kind, "data", string(doc)},
	}).Err()
	if err != nil {
		return fmt.Errorf("appending %s entry to %q: %w", kind, s.key, err)
	}

	return nil
}

// NotifyTransaction implements blockproc.Notifier.
func (s *Stream) NotifyTransaction(ctx context.Context, n blockproc.Notification) error {
	return s.add(ctx, "transaction", n)
}

// NotifySystemEvent implements blockproc.Notifier.
func (s *Stream) NotifySystemEvent(ctx context.Context, level blockproc.Level, message string, metadata map[string]any) error {
	return s.add(ctx, "system", map[string]any{
		"level":    level,
		"message":  message,
		"metadata": metadata,
	})
}

// NotifyMetrics is a no-op: per-block metrics go to telemetry, not the stream.
func (s *Stream) NotifyMetrics(context.Context, blockproc.Metrics) error {
	return nil
}
