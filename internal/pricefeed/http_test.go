package pricefeed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httptransport "github.com/gabapcia/btcwatch/internal/pkg/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_FetchPrice(t *testing.T) {
	fast := []httptransport.Option{
		httptransport.WithRetryWaitMin(time.Millisecond),
		httptransport.WithRetryWaitMax(2 * time.Millisecond),
	}

	t.Run("parses the USD quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			fmt.Fprint(w, `{"bitcoin":{"usd":64123.45}}`)
		}))
		defer server.Close()

		price, err := NewHTTPSource(server.URL, fast...).FetchPrice(t.Context())

		require.NoError(t, err)
		assert.Equal(t, "64123.45", price.String())
	})

	t.Run("rejects responses without a quote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ethereum":{"usd":3000}}`)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fast...).FetchPrice(t.Context())

		assert.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("rejects non-200 responses after retrying", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fast...).FetchPrice(t.Context())

		assert.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>`)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, fast...).FetchPrice(t.Context())

		assert.ErrorIs(t, err, ErrPriceUnavailable)
	})

	t.Run("defaults to CoinGecko", func(t *testing.T) {
		assert.Equal(t, DefaultURL, NewHTTPSource("").url)
	})
}
