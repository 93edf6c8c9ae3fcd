package prices

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 300 * time.Millisecond
	defaultRetryMaxBackoff = 2 * time.Second
)

// yahooChartResponse is the subset of Yahoo's v8 chart payload we read.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooConnector fetches quotes from Yahoo Finance's chart endpoint.
type YahooConnector struct {
	http *resty.Client
}

func NewYahooConnector(baseURL string) *YahooConnector {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://query1.finance.yahoo.com"
		logger.Warnf("No quote base URL provided, using default: %s", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		})

	return &YahooConnector{http: httpClient}
}

// Fetch retrieves one quote per ticker. A failed or unknown symbol yields
// an entry with null price fields rather than an error.
func (c *YahooConnector) Fetch(ctx context.Context, tickers []string) map[string]Quote {
	results := make(map[string]Quote, len(tickers))
	now := time.Now().UTC()

	for _, ticker := range tickers {
		quote, err := c.fetchOne(ctx, ticker, now)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"component": "YahooConnector",
				"ticker":    ticker,
			}).WithError(err).Warn("Quote fetch failed")
			results[ticker] = Quote{Ticker: ticker}
			continue
		}
		results[ticker] = quote
	}

	return results
}

func (c *YahooConnector) fetchOne(ctx context.Context, ticker string, now time.Time) (Quote, error) {
	var payload yahooChartResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"range":    "2d",
			"interval": "1d",
		}).
		SetResult(&payload).
		Get("/v8/finance/chart/" + ticker)
	if err != nil {
		return Quote{}, err
	}
	if resp.IsError() {
		return Quote{}, fmt.Errorf("unexpected quote response status %d", resp.StatusCode())
	}
	if payload.Chart.Error != nil || len(payload.Chart.Result) == 0 {
		return Quote{Ticker: ticker}, nil
	}

	meta := payload.Chart.Result[0].Meta
	price := round2(meta.RegularMarketPrice)

	quote := Quote{
		Ticker:       ticker,
		CurrentPrice: &price,
		LastFetched:  &now,
	}
	if meta.PreviousClose != 0 {
		change := round2((meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100)
		quote.ChangePercent = &change
	}
	return quote, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
