// Package blockproc drives the watcher: it polls the node for new blocks,
// walks every block in height order through the detector and hands matches
// and per-block metrics to a Notifier.
package blockproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"
	"github.com/gabapcia/btcwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/btcwatch/internal/pkg/telemetry"
	"github.com/gabapcia/btcwatch/internal/pkg/x/chflow"
	"github.com/gabapcia/btcwatch/internal/walletwatch"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPollInterval  = 5 * time.Second
	defaultMemoryLimitMB = 512

	// pressureCheckEvery is how many transactions pass between heap checks
	// inside a block.
	pressureCheckEvery = 100

	// reclaimRatio is the share of the ceiling above which a block in
	// progress hints the runtime to reclaim memory.
	reclaimRatio = 0.9
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrNodeUnreachable is returned by Start when the node does not answer
	// the liveness probe.
	ErrNodeUnreachable = errors.New("node unreachable")

	// ErrBlockNotFound is returned when the node answers without a block.
	ErrBlockNotFound = errors.New("block not found")
)

// Node is the subset of the node RPC the monitor uses.
type Node interface {
	Ping(ctx context.Context) error
	GetBlockCount(ctx context.Context) (int64, error)
	GetBlockHash(ctx context.Context, height int64) (string, error)
	GetBlock(ctx context.Context, hash string) (*blockstream.Block, error)
}

// Notifier receives everything the monitor reports. Calls are made
// synchronously from the processing loop, in chain order.
type Notifier interface {
	NotifyTransaction(ctx context.Context, n Notification) error
	NotifySystemEvent(ctx context.Context, level Level, message string, metadata map[string]any) error
	NotifyMetrics(ctx context.Context, m Metrics) error
}

// PriceSource quotes BTC in USD. The boolean is false when no quote is known.
type PriceSource interface {
	Price(ctx context.Context) (decimal.Decimal, bool)
}

// Service is the block monitor.
type Service interface {
	// Start probes the node, records the current tip as the watermark and
	// starts polling. Blocks after the tip are processed; the tip is not.
	// Returns ErrServiceAlreadyStarted if the monitor is running.
	Start(ctx context.Context) error

	// Close stops polling. A cycle in progress runs to completion first.
	// It is safe to call Close on a monitor that never started.
	Close()

	// Status reports the lifecycle state, the watermark and resource usage.
	Status() Status

	// Poll processes every block between the watermark and the node's tip,
	// advancing the watermark after each one. It stops at the first failing
	// block, leaving the watermark just below it.
	Poll(ctx context.Context) error

	// ProcessBlock runs one block through detection and notification
	// without touching the watermark.
	ProcessBlock(ctx context.Context, height int64) error
}

// closeFunc stops the polling goroutine and waits for it.
type closeFunc func()

// service is the default Service implementation.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool
	closeFunc closeFunc

	state         atomic.Value // State
	lastProcessed atomic.Int64

	node     Node
	detector walletwatch.Service
	notifier Notifier
	prices   PriceSource
	probe    retry.Retry
	tracer   trace.Tracer

	pollInterval  time.Duration
	memoryLimitMB int

	now      func() time.Time
	pressure func(ctx context.Context, limitMB int) blockstream.Pressure
	reclaim  func()
}

var _ Service = (*service)(nil)

// config holds the optional settings for New.
type config struct {
	pollInterval  time.Duration
	memoryLimitMB int
	prices        PriceSource
	probe         retry.Retry
}

// Option configures the Service created by New.
type Option func(*config)

// WithPollInterval sets the delay between polls. Default: 5 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithMemoryLimitMB sets the heap ceiling. Zero disables the ceiling.
// Default: 512.
func WithMemoryLimitMB(mb int) Option {
	return func(c *config) {
		c.memoryLimitMB = mb
	}
}

// WithPriceSource enables USD amounts on notifications.
func WithPriceSource(p PriceSource) Option {
	return func(c *config) {
		c.prices = p
	}
}

// WithProbeRetry replaces the retry policy of the startup liveness probe.
// Default: 3 attempts with a 2 second base delay.
func WithProbeRetry(r retry.Retry) Option {
	return func(c *config) {
		c.probe = r
	}
}

// New creates a stopped monitor.
func New(node Node, detector walletwatch.Service, notifier Notifier, opts ...Option) *service {
	cfg := config{
		pollInterval:  defaultPollInterval,
		memoryLimitMB: defaultMemoryLimitMB,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.probe == nil {
		cfg.probe = retry.New(
			retry.WithAttempts(3),
			retry.WithDelay(2*time.Second),
			retry.WithMaxDelay(8*time.Second),
			retry.WithOnRetry(func(attempt uint, err error) {
				logger.Warn(context.Background(), "node liveness probe failed",
					"probe.attempt", attempt+1,
					"error", err,
				)
			}),
		)
	}

	s := &service{
		node:          node,
		detector:      detector,
		notifier:      notifier,
		prices:        cfg.prices,
		probe:         cfg.probe,
		tracer:        telemetry.Tracer(),
		pollInterval:  cfg.pollInterval,
		memoryLimitMB: cfg.memoryLimitMB,
		now:           time.Now,
		pressure:      blockstream.CheckMemoryPressure,
		reclaim:       blockstream.HintReclaim,
	}
	s.state.Store(StateStopped)

	return s
}

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	s.state.Store(StateConnecting)

	err := s.probe.Execute(ctx, func() error {
		return s.node.Ping(ctx)
	})
	if err != nil {
		s.state.Store(StateStopped)
		return fmt.Errorf("%w: %w", ErrNodeUnreachable, err)
	}

	height, err := s.node.GetBlockCount(ctx)
	if err != nil {
		s.state.Store(StateStopped)
		return fmt.Errorf("reading chain height: %w", err)
	}
	s.lastProcessed.Store(height)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(loopCtx)
	}()

	s.closeFunc = func() {
		cancel()
		<-done
	}
	s.isStarted = true
	s.state.Store(StateRunning)

	logger.Info(ctx, "block monitor started",
		"block.height", height,
		"watchlist.size", s.detector.Len(),
		"poll.interval", s.pollInterval.String(),
	)
	s.notifySystemEvent(ctx, LevelInfo, "block monitor started", map[string]any{
		"block.height":   height,
		"watchlist.size": s.detector.Len(),
	})

	return nil
}

// run polls on a timer until ctx is canceled. A cycle always finishes before
// the cancellation is observed.
func (s *service) run(ctx context.Context) {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()

	for {
		if _, ok := chflow.Receive(ctx, timer.C); !ok {
			return
		}

		// Failures are reported by Poll; the next cycle retries.
		_ = s.Poll(context.WithoutCancel(ctx))

		timer.Reset(s.pollInterval)
	}
}

// Close implements Service.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()

		status := s.Status()
		status.State = StateStopped
		status.Running = false
		s.notifySystemEvent(context.Background(), LevelInfo, "block monitor stopped", map[string]any{
			"block.height":   status.LastProcessedHeight,
			"watchlist.size": status.WatchedCount,
			"memory.mb":      status.MemoryMB,
		})
	}

	s.closeFunc = nil
	s.isStarted = false
	s.state.Store(StateStopped)
}

// Status implements Service.
func (s *service) Status() Status {
	state := s.state.Load().(State)

	return Status{
		State:               state,
		Running:             state == StateRunning,
		LastProcessedHeight: s.lastProcessed.Load(),
		WatchedCount:        s.detector.Len(),
		MemoryMB:            blockstream.CurrentMemoryMB(),
	}
}

// notifySystemEvent forwards a system event, logging delivery failures.
func (s *service) notifySystemEvent(ctx context.Context, level Level, message string, metadata map[string]any) {
	if err := s.notifier.NotifySystemEvent(ctx, level, message, metadata); err != nil {
		logger.Warn(ctx, "system event not delivered",
			"event.message", message,
			"error", err,
		)
	}
}
