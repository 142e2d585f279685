package notifier

import (
	"context"

	"github.com/gabapcia/btcwatch/internal/blockproc"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records notifications as OpenTelemetry instruments.
type Metrics struct {
	matchedTxs     metric.Int64Counter
	matchedBTC     metric.Float64Counter
	systemEvents   metric.Int64Counter
	blocks         metric.Int64Counter
	blockTxs       metric.Int64Histogram
	processingTime metric.Int64Histogram
	latency        metric.Int64Histogram
	memory         metric.Float64Gauge
	height         metric.Int64Gauge
}

var _ blockproc.Notifier = (*Metrics)(nil)

// NewMetrics registers the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.matchedTxs, err = meter.Int64Counter("btcwatch.transactions.matched",
		metric.WithDescription("Transactions touching a watched address"),
	); err != nil {
		return nil, err
	}

	if m.matchedBTC, err = meter.Float64Counter("btcwatch.transactions.volume",
		metric.WithDescription("BTC moved by watched addresses"),
		metric.WithUnit("BTC"),
	); err != nil {
		return nil, err
	}

	if m.systemEvents, err = meter.Int64Counter("btcwatch.system.events",
		metric.WithDescription("Lifecycle and failure events"),
	); err != nil {
		return nil, err
	}

	if m.blocks, err = meter.Int64Counter("btcwatch.blocks.processed"); err != nil {
		return nil, err
	}

	if m.blockTxs, err = meter.Int64Histogram("btcwatch.block.transactions"); err != nil {
		return nil, err
	}

	if m.processingTime, err = meter.Int64Histogram("btcwatch.block.processing",
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.latency, err = meter.Int64Histogram("btcwatch.block.latency",
		metric.WithDescription("Time between the block header timestamp and the end of processing"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.memory, err = meter.Float64Gauge("btcwatch.memory.heap",
		metric.WithUnit("MB"),
	); err != nil {
		return nil, err
	}

	if m.height, err = meter.Int64Gauge("btcwatch.block.height"); err != nil {
		return nil, err
	}

	return &m, nil
}

// NotifyTransaction implements blockproc.Notifier.
func (m *Metrics) NotifyTransaction(ctx context.Context, n blockproc.Notification) error {
	attrs := metric.WithAttributes(attribute.String("tx.type", string(n.TransactionType)))

	m.matchedTxs.Add(ctx, 1, attrs)
	m.matchedBTC.Add(ctx, n.TotalBTC.InexactFloat64(), attrs)

	return nil
}

// NotifySystemEvent implements blockproc.Notifier.
func (m *Metrics) NotifySystemEvent(ctx context.Context, level blockproc.Level, _ string, _ map[string]any) error {
	m.systemEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("level", string(level))))
	return nil
}

// NotifyMetrics implements blockproc.Notifier.
func (m *Metrics) NotifyMetrics(ctx context.Context, bm blockproc.Metrics) error {
	m.blocks.Add(ctx, 1)
	m.blockTxs.Record(ctx, int64(bm.TxCount))
	m.processingTime.Record(ctx, bm.BlockProcessingMS)
	m.latency.Record(ctx, bm.LatencyMS)
	m.memory.Record(ctx, bm.MemoryMB)
	m.height.Record(ctx, bm.BlockHeight)

	return nil
}
