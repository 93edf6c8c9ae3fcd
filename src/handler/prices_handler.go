package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"wheelhouse/src/auth"
	"wheelhouse/src/prices"
)

type quoteProvider interface {
	GetPrices(ctx context.Context, tickers []string) []prices.Quote
}

// GetPricesHandler serves cached display quotes for a comma-separated
// ticker list. Quotes are best-effort and never reach the ledger.
func GetPricesHandler(provider quoteProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		raw := r.URL.Query().Get("tickers")
		if strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusBadRequest, "tickers is required")
			return
		}

		var tickers []string
		for _, part := range strings.Split(raw, ",") {
			ticker := strings.ToUpper(strings.TrimSpace(part))
			if ticker != "" {
				tickers = append(tickers, ticker)
			}
		}
		if len(tickers) == 0 {
			writeJSON(w, http.StatusOK, prices.QuoteResponse{Prices: []prices.Quote{}})
			return
		}

		writeJSON(w, http.StatusOK, prices.QuoteResponse{
			Prices: provider.GetPrices(r.Context(), tickers),
		})
	}
}

// DefaultPricesHandler wires the handler to the Yahoo connector behind the
// TTL cache.
func DefaultPricesHandler() http.HandlerFunc {
	config := prices.GetConfig()
	cache := prices.NewCache(
		prices.NewYahooConnector(config.QuoteBaseURL),
		time.Duration(config.CacheTTLSeconds)*time.Second,
		time.Now,
	)
	return GetPricesHandler(cache)
}
