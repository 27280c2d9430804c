package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

// EODClient fetches end-of-day close prices, volumes, and trading dates
// from the market-data provider's historical chart endpoint.
type EODClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewEODClient creates a new end-of-day price client.
func NewEODClient(httpClient *http.Client, baseURL string) *EODClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &EODClient{httpClient: httpClient, baseURL: baseURL}
}

// FetchEOD fetches the latest end-of-day data for each symbol, one at a
// time. It returns as many results as possible plus a per-symbol error for
// each failure; a bad symbol never aborts the batch.
func (c *EODClient) FetchEOD(ctx context.Context, symbols []string) ([]EODResult, []FetchError) {
	var results []EODResult
	var fetchErrors []FetchError

	for _, symbol := range symbols {
		result, err := c.fetchOne(ctx, symbol)
		if err != nil {
			fetchErrors = append(fetchErrors, FetchError{Symbol: symbol, Err: err})
			continue
		}
		results = append(results, result)
	}

	return results, fetchErrors
}

// fetchOne requests a few days of history to cover weekends and holidays
// and returns the last valid row.
func (c *EODClient) fetchOne(ctx context.Context, symbol string) (EODResult, error) {
	url := c.baseURL + chartPath + symbol + "?interval=1d&range=5d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return EODResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return EODResult{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return EODResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return EODResult{}, fmt.Errorf("decoding response: %w", err)
	}

	if chart.Chart.Error != nil {
		return EODResult{}, fmt.Errorf("chart error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return EODResult{}, fmt.Errorf("no chart results for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return EODResult{}, fmt.Errorf("no quote data for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	for i := len(result.Timestamp) - 1; i >= 0; i-- {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		close := *quote.Close[i]
		if close <= 0 {
			continue
		}
		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		return EODResult{
			Symbol:     symbol,
			Price:      int64(math.Round(close * 100)),
			Volume:     volume,
			TradingDay: dateOf(result.Timestamp[i]),
		}, nil
	}

	return EODResult{}, fmt.Errorf("no valid close price for %s", symbol)
}
