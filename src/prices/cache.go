// Package prices serves best-effort market quotes for display enrichment.
// Quotes never feed the ledger. lookups tolerate unknown or failed symbols
// by returning null fields.
package prices

import (
	"context"
	"sync"
	"time"
)

// Quote is the display price of a single ticker. All fields except Ticker
// are nil when the symbol is unknown or the upstream fetch failed.
type Quote struct {
	Ticker        string     `json:"ticker"`
	CurrentPrice  *float64   `json:"current_price"`
	ChangePercent *float64   `json:"change_percent"`
	LastFetched   *time.Time `json:"last_fetched"`
}

// QuoteResponse is the payload of the prices endpoint.
type QuoteResponse struct {
	Prices []Quote `json:"prices"`
}

// Fetcher retrieves quotes from the upstream source. Implementations must
// return an entry per requested ticker, degrading to null fields on failure.
type Fetcher interface {
	Fetch(ctx context.Context, tickers []string) map[string]Quote
}

type cacheEntry struct {
	quote     Quote
	fetchedAt time.Time
}

// Cache is a time-bounded quote cache keyed by ticker. Concurrent refreshes
// of the same key may race to overwrite with equally fresh data. last write
// wins is fine because entries are idempotent fetches.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
}

// NewCache builds a cache over the given fetcher. The clock is injectable
// for deterministic expiry tests.
func NewCache(fetcher Fetcher, ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		fetcher: fetcher,
		ttl:     ttl,
		now:     now,
	}
}

// GetPrices returns a quote per ticker, serving fresh cache entries and
// fetching the rest from upstream.
func (c *Cache) GetPrices(ctx context.Context, tickers []string) []Quote {
	now := c.now()
	results := make([]Quote, 0, len(tickers))
	var misses []string

	c.mu.Lock()
	for _, ticker := range tickers {
		entry, ok := c.entries[ticker]
		if ok && now.Sub(entry.fetchedAt) < c.ttl {
			results = append(results, entry.quote)
			continue
		}
		misses = append(misses, ticker)
	}
	c.mu.Unlock()

	if len(misses) == 0 {
		return results
	}

	fetched := c.fetcher.Fetch(ctx, misses)

	c.mu.Lock()
	for _, ticker := range misses {
		quote, ok := fetched[ticker]
		if !ok {
			quote = Quote{Ticker: ticker}
		}
		c.entries[ticker] = cacheEntry{quote: quote, fetchedAt: now}
		results = append(results, quote)
	}
	c.mu.Unlock()

	return results
}
