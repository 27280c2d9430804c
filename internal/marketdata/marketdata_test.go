package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// chartJSON renders a minimal chart payload with the given timestamps and
// nullable close/volume columns ("null" entries stand for missing data).
func chartJSON(symbol string, timestamps []int64, closes, volumes []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"symbol": %q, "currency": "USD", "regularMarketPrice": 0},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s], "volume": [%s]}]}
			}],
			"error": null
		}
	}`, symbol, strings.Join(ts, ","), strings.Join(closes, ","), strings.Join(volumes, ","))
}

const chartErrorJSON = `{
	"chart": {
		"result": null,
		"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
	}
}`

// Close-of-session timestamps: Monday 2025-01-27 21:00 UTC and the prior
// Friday 2025-01-24 21:00 UTC.
const (
	mondayClose = int64(1738011600)
	fridayClose = int64(1737752400)
)

func TestEODClientFetchEOD(t *testing.T) {
	t.Run("returns_latest_close_in_cents", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON("AAPL",
				[]int64{fridayClose, mondayClose},
				[]string{"148.10", "150.25"},
				[]string{"900000", "1000000"}))
		}))
		defer server.Close()

		client := NewEODClient(server.Client(), server.URL)
		results, fetchErrors := client.FetchEOD(context.Background(), []string{"AAPL"})

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		got := results[0]
		if got.Price != 15025 {
			t.Errorf("expected 15025 cents, got %d", got.Price)
		}
		if got.Volume != 1000000 {
			t.Errorf("expected volume 1000000, got %d", got.Volume)
		}
		want := time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)
		if !got.TradingDay.Equal(want) {
			t.Errorf("expected trading day %v, got %v", want, got.TradingDay)
		}
	})

	t.Run("skips_trailing_null_closes", func(t *testing.T) {
		// Providers pad the current session with null before the close.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON("AAPL",
				[]int64{fridayClose, mondayClose},
				[]string{"148.10", "null"},
				[]string{"900000", "null"}))
		}))
		defer server.Close()

		client := NewEODClient(server.Client(), server.URL)
		results, fetchErrors := client.FetchEOD(context.Background(), []string{"AAPL"})

		if len(fetchErrors) != 0 {
			t.Fatalf("unexpected fetch errors: %v", fetchErrors)
		}
		if results[0].Price != 14810 {
			t.Errorf("expected prior session close 14810, got %d", results[0].Price)
		}
	})

	t.Run("bad_symbol_does_not_abort_batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.Contains(r.URL.Path, "BADSYM") {
				fmt.Fprint(w, chartErrorJSON)
				return
			}
			fmt.Fprint(w, chartJSON("AAPL",
				[]int64{mondayClose}, []string{"150.25"}, []string{"1000000"}))
		}))
		defer server.Close()

		client := NewEODClient(server.Client(), server.URL)
		results, fetchErrors := client.FetchEOD(context.Background(), []string{"AAPL", "BADSYM"})

		if len(results) != 1 || results[0].Symbol != "AAPL" {
			t.Errorf("expected 1 good result for AAPL, got %v", results)
		}
		if len(fetchErrors) != 1 || fetchErrors[0].Symbol != "BADSYM" {
			t.Errorf("expected 1 fetch error for BADSYM, got %v", fetchErrors)
		}
	})

	t.Run("http_error_reported_per_symbol", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewEODClient(server.Client(), server.URL)
		results, fetchErrors := client.FetchEOD(context.Background(), []string{"AAPL"})

		if len(results) != 0 || len(fetchErrors) != 1 {
			t.Errorf("expected only a fetch error, got results=%v errors=%v", results, fetchErrors)
		}
	})
}

func TestMatrixClientFetchMatrix(t *testing.T) {
	t.Run("single_currency_needs_no_request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected provider call for a single currency")
		}))
		defer server.Close()

		client := NewMatrixClient(server.Client(), server.URL)
		matrix, err := client.FetchMatrix(context.Background(), []string{"USD"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if matrix["USDUSD"] != 1.0 {
			t.Errorf("expected self pair 1.0, got %v", matrix["USDUSD"])
		}
	})

	t.Run("parses_batched_quotes", func(t *testing.T) {
		var requested string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = r.URL.Query().Get("symbols")
			fmt.Fprint(w, `{
				"quoteResponse": {
					"result": [
						{"symbol": "USDCHF=X", "regularMarketPrice": 0.90},
						{"symbol": "CHFUSD=X", "regularMarketPrice": 1.1111}
					],
					"error": null
				}
			}`)
		}))
		defer server.Close()

		client := NewMatrixClient(server.Client(), server.URL)
		matrix, err := client.FetchMatrix(context.Background(), []string{"USD", "CHF"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(requested, "USDCHF=X") || !strings.Contains(requested, "CHFUSD=X") {
			t.Errorf("expected both pair tickers in one batched request, got %q", requested)
		}
		if matrix["USDCHF"] != 0.90 {
			t.Errorf("expected USDCHF 0.90, got %v", matrix["USDCHF"])
		}
		if matrix["USDUSD"] != 1.0 || matrix["CHFCHF"] != 1.0 {
			t.Error("expected self pairs present with 1.0")
		}
	})

	t.Run("pairs_without_quotes_absent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"quoteResponse": {"result": [], "error": null}}`)
		}))
		defer server.Close()

		client := NewMatrixClient(server.Client(), server.URL)
		matrix, err := client.FetchMatrix(context.Background(), []string{"USD", "JPY"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := matrix["USDJPY"]; ok {
			t.Error("expected unquoted pair absent from matrix")
		}
	})
}

func TestCalendarClientLastTradingDay(t *testing.T) {
	t.Run("returns_last_session_with_close", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartJSON("SPY",
				[]int64{fridayClose, mondayClose},
				[]string{"598.10", "null"},
				[]string{"1000", "null"}))
		}))
		defer server.Close()

		client := NewCalendarClient(server.Client(), server.URL)
		day, err := client.LastTradingDay(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if day != dateOf(fridayClose) {
			t.Errorf("expected %v, got %v", dateOf(fridayClose), day)
		}
	})

	t.Run("chart_error_surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, chartErrorJSON)
		}))
		defer server.Close()

		client := NewCalendarClient(server.Client(), server.URL)
		if _, err := client.LastTradingDay(context.Background()); err == nil {
			t.Error("expected error from chart error payload")
		}
	})
}

func TestQuoteClient(t *testing.T) {
	t.Run("eod_price_parses_close", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("symbol"); got != "AAPL" {
				t.Errorf("expected symbol AAPL, got %q", got)
			}
			if got := r.URL.Query().Get("apikey"); got != "test-key" {
				t.Errorf("expected api key forwarded, got %q", got)
			}
			fmt.Fprint(w, `{"symbol": "AAPL", "close": "150.25", "datetime": "2025-01-27"}`)
		}))
		defer server.Close()

		client := NewQuoteClient(server.Client(), server.URL, "test-key", 60, time.Minute)
		price, datetime, err := client.EODPrice(context.Background(), "AAPL", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 150.25 {
			t.Errorf("expected 150.25, got %v", price)
		}
		if datetime != "2025-01-27" {
			t.Errorf("expected datetime 2025-01-27, got %q", datetime)
		}
	})

	t.Run("payload_rate_limit_sleeps_and_retries", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				// The provider signals rate limiting in the body, not the
				// HTTP status.
				fmt.Fprint(w, `{"code": 429, "message": "API credits exhausted", "status": "error"}`)
				return
			}
			fmt.Fprint(w, `{"symbol": "AAPL", "close": "150.25", "datetime": "2025-01-27"}`)
		}))
		defer server.Close()

		client := NewQuoteClient(server.Client(), server.URL, "test-key", 60, 45*time.Second)
		var slept []time.Duration
		client.sleep = func(d time.Duration) { slept = append(slept, d) }

		price, _, err := client.EODPrice(context.Background(), "AAPL", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 150.25 {
			t.Errorf("expected 150.25 after retry, got %v", price)
		}
		if calls != 2 {
			t.Errorf("expected 2 requests, got %d", calls)
		}
		if len(slept) != 1 || slept[0] != 45*time.Second {
			t.Errorf("expected one cooldown sleep of 45s, got %v", slept)
		}
	})

	t.Run("provider_error_returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code": 404, "message": "symbol not found", "status": "error"}`)
		}))
		defer server.Close()

		client := NewQuoteClient(server.Client(), server.URL, "test-key", 60, time.Minute)
		if _, _, err := client.EODPrice(context.Background(), "NOPE", ""); err == nil {
			t.Error("expected provider error")
		}
	})

	t.Run("exchange_rate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("symbol"); got != "USD/EUR" {
				t.Errorf("expected symbol USD/EUR, got %q", got)
			}
			fmt.Fprint(w, `{"symbol": "USD/EUR", "rate": 0.95}`)
		}))
		defer server.Close()

		client := NewQuoteClient(server.Client(), server.URL, "test-key", 60, time.Minute)
		rate, err := client.ExchangeRate(context.Background(), "USD", "EUR")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 0.95 {
			t.Errorf("expected 0.95, got %v", rate)
		}
	})
}
