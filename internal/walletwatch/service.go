// Package walletwatch decides which transactions touch watched addresses and
// in which direction. Output addresses come straight from the transaction;
// input addresses require fetching the spent output from the node.
package walletwatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gabapcia/btcwatch/internal/addrcodec"
	"github.com/gabapcia/btcwatch/internal/blockstream"
	"github.com/gabapcia/btcwatch/internal/pkg/x/chflow"
)

const (
	defaultLookupConcurrency = 5
	defaultRateLimitCooldown = 10 * time.Second
)

// PrevoutResolver fetches the transaction an input spends from.
type PrevoutResolver interface {
	GetRawTransaction(ctx context.Context, txid string) (blockstream.Transaction, error)
}

// Service matches transactions against a watch-list.
type Service interface {
	// Detect reports every watched address among tx's outputs and, when at
	// least one output matched (or input resolution is forced), its inputs.
	// Lookup failures never fail detection; unresolved inputs are skipped.
	Detect(ctx context.Context, tx blockstream.Transaction) Result

	// Replace swaps the watch-list. Detections already running keep the list
	// they started with.
	Replace(watchList WatchList)

	// Len returns the size of the current watch-list.
	Len() int
}

// service is the default Service implementation.
type service struct {
	watchList atomic.Pointer[WatchList]
	resolver  PrevoutResolver
	codec     *addrcodec.Codec

	lookupConcurrency   int
	rateLimitCooldown   time.Duration
	alwaysResolveInputs bool

	// cooldownUntil holds the UnixNano time before which no lookup starts.
	cooldownUntil atomic.Int64
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) bool
}

var _ Service = (*service)(nil)

// config holds the optional settings for New.
type config struct {
	codec               *addrcodec.Codec
	lookupConcurrency   int
	rateLimitCooldown   time.Duration
	alwaysResolveInputs bool
}

// Option configures the Service created by New.
type Option func(*config)

// WithCodec sets the codec used to derive addresses. Default: mainnet.
func WithCodec(codec *addrcodec.Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// WithLookupConcurrency caps concurrent prevout lookups per transaction.
// Default: 5.
func WithLookupConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.lookupConcurrency = n
		}
	}
}

// WithRateLimitCooldown sets the pause applied to the next lookup after the
// node rejected one for rate limiting. Default: 10 seconds.
func WithRateLimitCooldown(d time.Duration) Option {
	return func(c *config) {
		c.rateLimitCooldown = d
	}
}

// WithAlwaysResolveInputs resolves inputs even when no output matched, so
// purely outgoing transactions are detected. This costs one lookup per spent
// transaction for every transaction in a block. Default: false.
func WithAlwaysResolveInputs(b bool) Option {
	return func(c *config) {
		c.alwaysResolveInputs = b
	}
}

// New creates a Service watching watchList.
func New(resolver PrevoutResolver, watchList WatchList, opts ...Option) *service {
	cfg := config{
		lookupConcurrency: defaultLookupConcurrency,
		rateLimitCooldown: defaultRateLimitCooldown,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.codec == nil {
		cfg.codec = addrcodec.New(nil)
	}

	s := &service{
		resolver:            resolver,
		codec:               cfg.codec,
		lookupConcurrency:   cfg.lookupConcurrency,
		rateLimitCooldown:   cfg.rateLimitCooldown,
		alwaysResolveInputs: cfg.alwaysResolveInputs,
		now:                 time.Now,
		sleep:               chflow.Sleep,
	}
	s.watchList.Store(&watchList)

	return s
}

// Replace implements Service.
func (s *service) Replace(watchList WatchList) {
	s.watchList.Store(&watchList)
}

// Len implements Service.
func (s *service) Len() int {
	return s.watchList.Load().Len()
}
