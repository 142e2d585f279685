package blockproc

import (
	"context"
	"fmt"
	"slices"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/pkg/types"
	"github.com/gabapcia/btcwatch/internal/walletwatch"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Poll implements Service.
func (s *service) Poll(ctx context.Context) error {
	height, err := s.node.GetBlockCount(ctx)
	if err != nil {
		logger.Error(ctx, "failed to read chain height", "error", err)
		s.notifySystemEvent(ctx, LevelError, "failed to read chain height", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("reading chain height: %w", err)
	}

	for h := s.lastProcessed.Load() + 1; h <= height; h++ {
		if err := s.ProcessBlock(ctx, h); err != nil {
			logger.Error(ctx, "block processing failed", "block.height", h, "error", err)
			s.notifySystemEvent(ctx, LevelError, "block processing failed", map[string]any{
				"block.height": h,
				"error":        err.Error(),
			})
			return err
		}

		s.lastProcessed.Store(h)

		if p := s.pressure(ctx, s.memoryLimitMB); p.OverLimit {
			s.reclaim()
		}
	}

	return nil
}

// ProcessBlock implements Service.
func (s *service) ProcessBlock(ctx context.Context, height int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "blockproc.ProcessBlock", trace.WithAttributes(
		attribute.Int64("block.height", height),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx = logger.Derive(ctx, "block.height", height)
	started := s.now()

	hash, err := s.node.GetBlockHash(ctx, height)
	if err != nil {
		return fmt.Errorf("fetching hash of block %d: %w", height, err)
	}

	block, err := s.node.GetBlock(ctx, hash)
	if err != nil {
		return fmt.Errorf("fetching block %d (%s): %w", height, hash, err)
	}
	if block == nil {
		return fmt.Errorf("fetching block %d (%s): %w", height, hash, ErrBlockNotFound)
	}

	parser := blockstream.NewParser(
		blockstream.WithReclaimEvery(pressureCheckEvery),
		blockstream.WithReclaimHook(func() {
			if p := s.pressure(ctx, s.memoryLimitMB); p.Ratio > reclaimRatio {
				s.reclaim()
			}
		}),
	)

	var price *usdQuote
	matches := 0
	for _, tx := range parser.Transactions(block) {
		result := s.detector.Detect(ctx, tx)
		if !result.Matched {
			continue
		}

		if price == nil {
			price = s.quote(ctx)
		}

		n := s.buildNotification(block, tx, result, price)
		if err := s.notifier.NotifyTransaction(ctx, n); err != nil {
			return fmt.Errorf("notifying transaction %s: %w", tx.TxID, err)
		}
		matches++
	}

	finished := s.now()
	metrics := Metrics{
		BlockHeight:       height,
		MemoryMB:          blockstream.CurrentMemoryMB(),
		BlockProcessingMS: finished.Sub(started).Milliseconds(),
		TxCount:           len(block.Transactions),
		Matches:           matches,
	}
	if !block.Time.IsZero() {
		metrics.LatencyMS = finished.Sub(block.Time).Milliseconds()
	}

	span.SetAttributes(
		attribute.Int("block.tx_count", metrics.TxCount),
		attribute.Int("block.matches", matches),
	)

	if err := s.notifier.NotifyMetrics(ctx, metrics); err != nil {
		logger.Warn(ctx, "block metrics not delivered", "error", err)
	}

	logger.Info(ctx, "block processed",
		"block.hash", block.Hash,
		"block.tx_count", metrics.TxCount,
		"block.matches", matches,
		"block.processing_ms", metrics.BlockProcessingMS,
	)

	return nil
}

// buildNotification assembles the record for a matched transaction.
func (s *service) buildNotification(block *blockstream.Block, tx blockstream.Transaction, result walletwatch.Result, price *usdQuote) Notification {
	watched := types.NewSet[string]()
	for _, inv := range result.Involvements {
		watched.Add(inv.Address)
	}
	addresses := watched.ToSlice()
	slices.Sort(addresses)

	n := Notification{
		ID:                newNotificationID(),
		Timestamp:         s.now().UTC(),
		BlockHeight:       block.Height,
		BlockHash:         block.Hash,
		TxID:              tx.TxID,
		TransactionType:   result.TransactionType,
		Involvements:      result.Involvements,
		WatchedAddresses:  addresses,
		TotalBTC:          result.TotalBTC,
		BalanceDifference: result.BalanceDifference,
	}

	if price != nil && price.ok {
		usd := result.TotalBTC.Mul(price.value).Round(2)
		n.TotalUSD = &usd
	}

	if payload, ok := blockstream.ExtractEmbeddedPayload(tx); ok {
		n.Payload = &payload
	}

	return n
}

// usdQuote is the BTC price read for a block.
type usdQuote struct {
	value decimal.Decimal
	ok    bool
}

// quote reads the USD price. It is called at most once per block.
func (s *service) quote(ctx context.Context) *usdQuote {
	if s.prices == nil {
		return &usdQuote{}
	}

	value, ok := s.prices.Price(ctx)
	return &usdQuote{value: value, ok: ok}
}

// newNotificationID returns a time-ordered identifier, falling back to a
// random one if the clock sequence cannot be read.
func newNotificationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
