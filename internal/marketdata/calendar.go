package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CalendarClient resolves the most recent trading day using a liquid proxy
// ticker's history, so weekends and holidays map to the prior session.
type CalendarClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	proxy      string
}

// NewCalendarClient creates a new trading-calendar client.
func NewCalendarClient(httpClient *http.Client, baseURL string) *CalendarClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CalendarClient{httpClient: httpClient, baseURL: baseURL, proxy: lastTradingDayProxy}
}

// LastTradingDay returns the last trading day as a UTC calendar date.
func (c *CalendarClient) LastTradingDay(ctx context.Context) (time.Time, error) {
	url := c.baseURL + chartPath + c.proxy + "?interval=1d&range=7d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("building calendar request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("calendar request: unexpected status %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return time.Time{}, fmt.Errorf("decoding calendar response: %w", err)
	}

	if chart.Chart.Error != nil {
		return time.Time{}, fmt.Errorf("calendar chart error: %s", chart.Chart.Error.Code)
	}
	if len(chart.Chart.Result) == 0 {
		return time.Time{}, fmt.Errorf("no calendar results")
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return time.Time{}, fmt.Errorf("no calendar quote data")
	}

	quote := result.Indicators.Quote[0]
	for i := len(result.Timestamp) - 1; i >= 0; i-- {
		if i < len(quote.Close) && quote.Close[i] != nil {
			return dateOf(result.Timestamp[i]), nil
		}
	}

	return time.Time{}, fmt.Errorf("no valid trading day found")
}
