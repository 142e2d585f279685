// Package http provides a configurable HTTP client with retry logic.
// It wraps the retryablehttp.Client from HashiCorp and exposes functional
// options for customizing timeouts and retry behavior.
package http

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// config holds internal settings for the HTTP client.
type config struct {
	timeout      time.Duration            // maximum duration for a single HTTP request
	retryWaitMin time.Duration            // delay before the first retry
	retryWaitMax time.Duration            // cap for the exponential backoff
	retryMax     int                      // number of retries after the first attempt
	checkRetry   retryablehttp.CheckRetry // decides whether a response is retried
}

// Option defines a functional option for configuring the HTTP client.
type Option func(*config)

// NewClient creates a retryablehttp.Client configured with the provided
// options. Defaults:
//
//   - timeout:      30 seconds
//   - retryWaitMin: 2 seconds
//   - retryWaitMax: 8 seconds
//   - retryMax:     2 retries (3 attempts in total)
//   - checkRetry:   retryablehttp.DefaultRetryPolicy
//
// Backoff is exponential (2s, 4s, ...). When retries are exhausted the last
// response and error are returned as-is, so callers can still inspect the
// status code of the final attempt.
func NewClient(opts ...Option) *retryablehttp.Client {
	cfg := config{
		timeout:      30 * time.Second,
		retryWaitMin: 2 * time.Second,
		retryWaitMax: 8 * time.Second,
		retryMax:     2,
		checkRetry:   retryablehttp.DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = cfg.timeout
	client.RetryWaitMin = cfg.retryWaitMin
	client.RetryWaitMax = cfg.retryWaitMax
	client.RetryMax = cfg.retryMax
	client.Backoff = retryablehttp.DefaultBackoff
	client.CheckRetry = cfg.checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// WithTimeout sets the maximum duration allowed for a single HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithRetryWaitMin sets the delay before the first retry.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMin = d
	}
}

// WithRetryWaitMax caps the exponential backoff between retries.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.retryWaitMax = d
	}
}

// WithRetryMax sets the number of retries performed after the first attempt.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.retryMax = n
	}
}

// WithCheckRetry replaces the policy deciding whether an attempt is retried.
func WithCheckRetry(f retryablehttp.CheckRetry) Option {
	return func(c *config) {
		c.checkRetry = f
	}
}
