package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// firstSentenceRegex extracts the leading sentence of a business summary.
var firstSentenceRegex = regexp.MustCompile(`^(.*?[.!?])(\s+[A-Z]|$)`)

// SecurityInfo is ticker metadata used to prefill admin security forms.
type SecurityInfo struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Currency    string `json:"currency"`
	Exchange    string `json:"exchange"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	Sector      string `json:"sector"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// summaryResponse is the provider's quote-summary payload with the asset
// profile and price modules.
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Country             string `json:"country"`
				Website             string `json:"website"`
				Industry            string `json:"industry"`
				Sector              string `json:"sector"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			Price struct {
				LongName     string `json:"longName"`
				Currency     string `json:"currency"`
				ExchangeName string `json:"exchangeName"`
				QuoteType    string `json:"quoteType"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// InfoClient fetches ticker metadata and caches results for a TTL, since
// metadata changes rarely and the lookup backs an interactive form.
type InfoClient struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	cache      *gocache.Cache
}

// NewInfoClient creates a metadata client with the given cache TTL.
func NewInfoClient(httpClient *http.Client, baseURL string, cacheTTL time.Duration) *InfoClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &InfoClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// Info returns metadata for a symbol, served from cache when fresh.
func (c *InfoClient) Info(ctx context.Context, symbol string) (*SecurityInfo, error) {
	if cached, found := c.cache.Get(symbol); found {
		return cached.(*SecurityInfo), nil
	}

	info, err := c.fetchInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(symbol, info)
	return info, nil
}

func (c *InfoClient) fetchInfo(ctx context.Context, symbol string) (*SecurityInfo, error) {
	url := c.baseURL + summaryPath + symbol + "?modules=assetProfile,price"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building info request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("info http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("info request: unexpected status %d", resp.StatusCode)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decoding info response: %w", err)
	}

	if summary.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("info error for %s: %s", symbol, summary.QuoteSummary.Error.Code)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no info for %s", symbol)
	}

	result := summary.QuoteSummary.Result[0]
	return &SecurityInfo{
		Symbol:      symbol,
		Name:        result.Price.LongName,
		Country:     result.AssetProfile.Country,
		Currency:    result.Price.Currency,
		Exchange:    result.Price.ExchangeName,
		Website:     result.AssetProfile.Website,
		Industry:    result.AssetProfile.Industry,
		Sector:      result.AssetProfile.Sector,
		Description: firstSentence(result.AssetProfile.LongBusinessSummary),
		Category:    categoryFor(result.Price.QuoteType),
	}, nil
}

// firstSentence trims a long business summary down to its first sentence.
func firstSentence(summary string) string {
	if summary == "" {
		return ""
	}
	if m := firstSentenceRegex.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	return summary
}

// categoryFor maps the provider's quote type onto a security category name.
func categoryFor(quoteType string) string {
	switch quoteType {
	case "EQUITY":
		return "Share"
	case "ETF":
		return "ETF"
	case "MUTUALFUND":
		return "Managed Fund"
	default:
		return ""
	}
}
