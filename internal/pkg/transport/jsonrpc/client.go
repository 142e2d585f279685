// Package jsonrpc provides a generic JSON-RPC client over HTTP.
// It is suitable for bitcoind-compatible nodes: requests carry a client-local,
// monotonically increasing id, transport failures are retried with exponential
// backoff, and errors reported by the node are surfaced without retrying.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	httptransport "github.com/gabapcia/btcwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrProviderReturnedError indicates that the remote JSON-RPC server returned an error response.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrTransport indicates that the request could not be completed at the
	// HTTP level, even after retries.
	ErrTransport = errors.New("transport error")
)

// ProviderError is an error object reported by the node. It is final: the
// same request would fail again, so it is never retried.
type ProviderError struct {
	Code    int    `json:"code"`    // JSON-RPC or node specific error code
	Message string `json:"message"` // Human-readable error message
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: [%d] - %s", ErrProviderReturnedError, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return ErrProviderReturnedError
}

// TransportError is returned once the retry budget is exhausted. StatusCode is
// zero when no HTTP response was received at all.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrTransport, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// IsRateLimited reports whether err looks like a provider rate-limit rejection:
// an HTTP 429 or an error text mentioning rate limiting.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests")
}

// request is a JSON-RPC request envelope.
type request struct {
	JsonRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// response represents a JSON-RPC response envelope.
type response struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *ProviderError  `json:"error"`
	Result  json.RawMessage `json:"result"`
}

// Err returns the node-reported error, if any.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return r.Error
}

// Client defines the interface for a generic JSON-RPC client.
type Client interface {
	// Fetch sends a JSON-RPC request with the given method name and parameters.
	// It returns the raw JSON result, a *ProviderError when the node rejected
	// the call, or a *TransportError when the node could not be reached or
	// its reply could not be decoded.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// client is the default implementation of the Client interface.
type client struct {
	providerEndpoint string
	username         string
	password         string
	httpClient       *retryablehttp.Client
	lastID           atomic.Uint64
}

// Compile-time assertion that client implements the Client interface.
var _ Client = (*client)(nil)

// nextID returns the correlation id for the next request. Ids have no meaning
// to the node; they only tie log lines to requests.
func (c *client) nextID() uint64 {
	return c.lastID.Add(1)
}

// Fetch implements Client.
func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(request{
		JsonRPC: "2.0",
		ID:      c.nextID(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer res.Body.Close()

	var data response
	decodeErr := json.NewDecoder(res.Body).Decode(&data)
	if decodeErr == nil && data.Error != nil {
		return nil, data.Err()
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &TransportError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected response status %q", res.Status),
		}
	}

	if decodeErr != nil {
		return nil, &TransportError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("decoding %s response: %w", method, decodeErr),
		}
	}

	return data.Result, nil
}

// retryPolicy retries what retryablehttp retries by default (connection
// errors, 429 and 5xx) except responses whose body is a JSON-RPC error:
// bitcoind reports node errors with HTTP 500 and those must not be retried.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode >= http.StatusInternalServerError && carriesProviderError(resp) {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// carriesProviderError peeks at the response body and reports whether it is a
// JSON-RPC error envelope. The body is restored so it can be read again.
func carriesProviderError(resp *http.Response) bool {
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return false
	}

	var data response
	return json.Unmarshal(raw, &data) == nil && data.Error != nil
}

// config holds the optional settings for NewClient.
type config struct {
	username, password string
	httpOpts           []httptransport.Option
}

// Option configures the client created by NewClient.
type Option func(*config)

// WithBasicAuth sets the RPC credentials sent with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *config) {
		c.username = username
		c.password = password
	}
}

// WithTimeout sets the per-request timeout. Default: 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, httptransport.WithTimeout(d))
	}
}

// WithRetryWaitMin sets the delay before the first retry. Default: 2 seconds.
func WithRetryWaitMin(d time.Duration) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, httptransport.WithRetryWaitMin(d))
	}
}

// WithRetryWaitMax caps the exponential backoff. Default: 8 seconds.
func WithRetryWaitMax(d time.Duration) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, httptransport.WithRetryWaitMax(d))
	}
}

// WithRetryMax sets the number of retries after the first attempt. Default: 2.
func WithRetryMax(n int) Option {
	return func(c *config) {
		c.httpOpts = append(c.httpOpts, httptransport.WithRetryMax(n))
	}
}

// NewClient constructs a Client sending requests to providerEndpoint.
func NewClient(providerEndpoint string, opts ...Option) *client {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	httpOpts := append([]httptransport.Option{httptransport.WithCheckRetry(retryPolicy)}, cfg.httpOpts...)

	return &client{
		providerEndpoint: providerEndpoint,
		username:         cfg.username,
		password:         cfg.password,
		httpClient:       httptransport.NewClient(httpOpts...),
	}
}
