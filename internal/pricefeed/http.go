package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	httptransport "github.com/gabapcia/btcwatch/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
)

// DefaultURL is CoinGecko's simple price endpoint for BTC in USD.
const DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"

// ErrPriceUnavailable is returned when the response carries no usable quote.
var ErrPriceUnavailable = errors.New("price unavailable")

// HTTPSource reads quotes shaped like {"bitcoin":{"usd":64000.5}}.
type HTTPSource struct {
	url    string
	client *retryablehttp.Client
}

// NewHTTPSource creates a Source polling url. Transport options tune the
// underlying retrying client.
func NewHTTPSource(url string, opts ...httptransport.Option) *HTTPSource {
	if url == "" {
		url = DefaultURL
	}

	return &HTTPSource{
		url:    url,
		client: httptransport.NewClient(opts...),
	}
}

// FetchPrice implements Source.
func (s *HTTPSource) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: unexpected status %q", ErrPriceUnavailable, res.Status)
	}

	var quotes map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(res.Body).Decode(&quotes); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
	}

	price, ok := quotes["bitcoin"]["usd"]
	if !ok || !price.IsPositive() {
		return decimal.Zero, ErrPriceUnavailable
	}

	return price, nil
}
