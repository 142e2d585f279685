// Package notifier holds the blockproc.Notifier sinks that need no external
// service (structured logs and OpenTelemetry metrics) and the fan-out that
// combines them with the messaging sinks.
package notifier

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockproc"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
)

// Log writes every notification as a structured log line.
type Log struct{}

var _ blockproc.Notifier = Log{}

// NewLog creates a Log sink.
func NewLog() Log {
	return Log{}
}

// NotifyTransaction implements blockproc.Notifier.
func (Log) NotifyTransaction(ctx context.Context, n blockproc.Notification) error {
	kv := []any{
		"notification.id", n.ID,
		"block.height", n.BlockHeight,
		"block.hash", n.BlockHash,
		"tx.id", n.TxID,
		"tx.type", n.TransactionType,
		"tx.total_btc", n.TotalBTC.String(),
		"tx.watched_addresses", n.WatchedAddresses,
		"tx.involvements", n.Involvements,
	}
	if n.TotalUSD != nil {
		kv = append(kv, "tx.total_usd", n.TotalUSD.StringFixed(2))
	}
	if n.BalanceDifference != nil {
		kv = append(kv, "tx.balance_difference", n.BalanceDifference.String())
	}
	if n.Payload != nil {
		kv = append(kv, "tx.payload_hex", n.Payload.Hex)
		if n.Payload.DecodingSuccess {
			kv = append(kv, "tx.payload_text", n.Payload.Text)
		}
	}

	logger.Info(ctx, "watched address activity", kv...)
	return nil
}

// NotifySystemEvent implements blockproc.Notifier.
func (Log) NotifySystemEvent(ctx context.Context, level blockproc.Level, message string, metadata map[string]any) error {
	kv := make([]any, 0, len(metadata)*2)
	for k, v := range metadata {
		kv = append(kv, k, v)
	}

	switch level {
	case blockproc.LevelError:
		logger.Error(ctx, message, kv...)
	case blockproc.LevelWarn:
		logger.Warn(ctx, message, kv...)
	default:
		logger.Info(ctx, message, kv...)
	}

	return nil
}

// NotifyMetrics implements blockproc.Notifier.
func (Log) NotifyMetrics(ctx context.Context, m blockproc.Metrics) error {
	logger.Debug(ctx, "block metrics",
		"block.height", m.BlockHeight,
		"block.tx_count", m.TxCount,
		"block.matches", m.Matches,
		"block.processing_ms", m.BlockProcessingMS,
		"block.latency_ms", m.LatencyMS,
		"memory.mb", m.MemoryMB,
	)

	return nil
}
