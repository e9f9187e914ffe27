// Package rates fetches the blue-dollar quote used to convert USD amounts
// into the ARS base currency. A fetch failure falls back to the configured
// default so conversions keep working offline.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultURL is the public blue-dollar quote endpoint.
const DefaultURL = "https://dolarapi.com/v1/dolares/blue"

const cacheTTL = 5 * time.Minute

// Quote is the fetched exchange rate.
type Quote struct {
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetchedAt"`
	Fallback  bool      `json:"fallback"`
}

type apiResponse struct {
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
}

// Client fetches and caches the current quote.
type Client struct {
	url      string
	fallback float64
	http     *http.Client
	log      zerolog.Logger

	mu     sync.Mutex
	cached *Quote
}

// NewClient creates a rate client. An empty url selects DefaultURL;
// fallback is the rate returned when the endpoint is unreachable.
func NewClient(url string, fallback float64, log zerolog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:      url,
		fallback: fallback,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// Current returns the cached quote, refreshing it when stale. It never
// returns an error: an unreachable endpoint yields the fallback rate with
// Fallback set.
func (c *Client) Current(ctx context.Context) Quote {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cached.FetchedAt) < cacheTTL {
		return *c.cached
	}

	q, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Dollar rate fetch failed, using fallback")
		if c.cached != nil {
			return *c.cached
		}
		return Quote{Rate: c.fallback, FetchedAt: time.Now(), Fallback: true}
	}

	c.cached = &q
	return q
}

func (c *Client) fetch(ctx context.Context) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("rates: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("rates: fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("rates: unexpected status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("rates: decode quote: %w", err)
	}
	if body.Venta <= 0 {
		return Quote{}, fmt.Errorf("rates: non-positive sell rate %v", body.Venta)
	}

	return Quote{Rate: body.Venta, FetchedAt: time.Now()}, nil
}
