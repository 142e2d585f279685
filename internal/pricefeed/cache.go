// Package pricefeed provides the BTC/USD quote used to convert notification
// amounts. Quotes are cached for a TTL and a failed refresh keeps serving the
// last good value.
package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/gabapcia/btcwatch/internal/pkg/logger"

	"github.com/shopspring/decimal"
)

const defaultTTL = 60 * time.Second

// Source fetches a fresh quote.
type Source interface {
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}

// Cache holds the latest quote from a Source.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	price     decimal.Decimal
	fetchedAt time.Time
	valid     bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a quote is served before a refresh. Default: 60 seconds.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty Cache in front of source.
func NewCache(source Source, opts ...Option) *Cache {
	c := &Cache{
		source: source,
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Price returns the cached quote, refreshing it first when it is older than
// the TTL. The boolean is false only when no quote was ever fetched.
func (c *Cache) Price(ctx context.Context) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.price, true
	}

	price, err := c.source.FetchPrice(ctx)
	if err != nil {
		logger.Warn(ctx, "price refresh failed, serving cached quote",
			"price.cached", c.valid,
			"error", err,
		)
		return c.price, c.valid
	}

	c.price = price
	c.fetchedAt = c.now()
	c.valid = true

	return c.price, true
}
