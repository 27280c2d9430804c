package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// QuoteClient is the alternate quote/EOD API client. The provider enforces a
// per-minute request budget, so every call waits on a limiter sized to that
// budget, and a rate-limit code inside the JSON payload triggers a fixed
// cooldown followed by a retry of the same request.
type QuoteClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
	limiter    *rate.Limiter
	cooldown   time.Duration
	sleep      func(time.Duration) // overridable for tests
}

// quoteEnvelope covers the provider's error signaling: rate-limit and other
// failures arrive as a JSON body with a code and message, not an HTTP status.
type quoteEnvelope struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

type eodPayload struct {
	quoteEnvelope
	Symbol   string `json:"symbol"`
	Close    string `json:"close"`
	Datetime string `json:"datetime"`
}

type exchangeRatePayload struct {
	quoteEnvelope
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

// NewQuoteClient creates a quote client with a budget of requestsPerMinute
// requests over a sliding 60-second window and the given rate-limit cooldown.
func NewQuoteClient(httpClient *http.Client, baseURL, apiKey string, requestsPerMinute int, cooldown time.Duration) *QuoteClient {
	if baseURL == "" {
		baseURL = "https://api.twelvedata.com"
	}
	return &QuoteClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		cooldown:   cooldown,
		sleep:      time.Sleep,
	}
}

// EODPrice fetches the latest end-of-day close for a symbol. An optional
// date (YYYY-MM-DD) pins the quote to a specific session.
func (c *QuoteClient) EODPrice(ctx context.Context, symbol, date string) (float64, string, error) {
	params := url.Values{"symbol": {symbol}}
	if date != "" {
		params.Set("date", date)
	}

	var payload eodPayload
	if err := c.fetch(ctx, "/eod", params, &payload); err != nil {
		return 0, "", err
	}
	if payload.Close == "" {
		return 0, "", fmt.Errorf("no close price for %s", symbol)
	}
	price, err := strconv.ParseFloat(payload.Close, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parsing close price for %s: %w", symbol, err)
	}
	return price, payload.Datetime, nil
}

// ExchangeRate fetches the current rate for a currency pair (e.g. USD/EUR).
func (c *QuoteClient) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	params := url.Values{"symbol": {from + "/" + to}}

	var payload exchangeRatePayload
	if err := c.fetch(ctx, "/exchange_rate", params, &payload); err != nil {
		return 0, err
	}
	if payload.Rate <= 0 {
		return 0, fmt.Errorf("no rate for %s/%s", from, to)
	}
	return payload.Rate, nil
}

// fetch issues one budgeted request and decodes the response into out. When
// the payload carries the provider's rate-limit code, it sleeps the cooldown
// and retries the same request until it goes through.
func (c *QuoteClient) fetch(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}

		var raw json.RawMessage
		decodeErr := json.NewDecoder(resp.Body).Decode(&raw)
		_ = resp.Body.Close()
		if decodeErr != nil {
			return fmt.Errorf("decoding response: %w", decodeErr)
		}

		var envelope quoteEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decoding envelope: %w", err)
		}
		if envelope.Code == http.StatusTooManyRequests {
			c.sleep(c.cooldown)
			continue
		}
		if envelope.Status == "error" {
			return fmt.Errorf("provider error %d: %s", envelope.Code, envelope.Message)
		}

		return json.Unmarshal(raw, out)
	}
}
