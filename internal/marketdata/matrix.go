package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// MatrixClient fetches a full exchange-rate matrix for a set of currency
// codes in one batched provider call.
type MatrixClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
}

// NewMatrixClient creates a new FX matrix client.
func NewMatrixClient(httpClient *http.Client, baseURL string) *MatrixClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MatrixClient{httpClient: httpClient, baseURL: baseURL}
}

// FetchMatrix requests rates for all ordered permutations of the given
// currency codes in a single batched call. The returned map is keyed by
// concatenated pair ("USDCHF"); pairs the provider has no data for are
// simply absent. Self pairs are always present with rate 1.0.
func (c *MatrixClient) FetchMatrix(ctx context.Context, codes []string) (map[string]float64, error) {
	rates := make(map[string]float64, len(codes)*len(codes))
	for _, code := range codes {
		rates[code+code] = 1.0
	}
	if len(codes) < 2 {
		return rates, nil
	}

	var tickers []string
	for _, from := range codes {
		for _, to := range codes {
			if from == to {
				continue
			}
			tickers = append(tickers, from+to+"=X")
		}
	}

	url := c.baseURL + quotePath + "?symbols=" + strings.Join(tickers, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building matrix request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matrix http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matrix request: unexpected status %d", resp.StatusCode)
	}

	var quotes quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("decoding matrix response: %w", err)
	}

	for _, r := range quotes.QuoteResponse.Result {
		if r.RegularMarketPrice <= 0 {
			continue
		}
		pair := strings.TrimSuffix(r.Symbol, "=X")
		rates[pair] = r.RegularMarketPrice
	}

	return rates, nil
}
