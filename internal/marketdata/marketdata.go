// Package marketdata contains thin clients for the external market-data
// providers: end-of-day security prices, the FX rate matrix, the last
// trading day lookup, ticker metadata, and an alternate quote API behind a
// rate-limited request budget.
package marketdata

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	chartPath      = "/v8/finance/chart/"
	quotePath      = "/v7/finance/quote"
	summaryPath    = "/v10/finance/quoteSummary/"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

	// lastTradingDayProxy is a liquid market ETF used to resolve the most
	// recent trading day across weekends and holidays.
	lastTradingDayProxy = "SPY"
)

// EODResult is the latest end-of-day data point for one symbol.
type EODResult struct {
	Symbol     string
	Price      int64 // cents
	Volume     int64
	TradingDay time.Time
}

// FetchError represents a failed fetch for a specific symbol.
type FetchError struct {
	Symbol string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data for %s: %v", e.Symbol, e.Err)
}

// chartResponse is the provider's historical chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				ExchangeName       string  `json:"exchangeName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// quoteResponse is the provider's batched quote payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult    `json:"result"`
		Error  *json.RawMessage `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// dateOf truncates a Unix timestamp to a UTC calendar date.
func dateOf(unix int64) time.Time {
	t := time.Unix(unix, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
