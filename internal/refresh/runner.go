// Package refresh implements the daily market-data jobs: end-of-day
// security prices and the exchange-rate matrix, each gated on a stored
// last-refreshed date so a job runs at most once per calendar day, plus
// admin-triggered retries of individual failed fetches.
package refresh

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bondfolio/internal/marketdata"
	"bondfolio/internal/models"
	"bondfolio/internal/services"
)

// baseCurrency anchors cross-rate derivation: when the provider has no
// direct quote for a pair, the rate is derived through USD.
const baseCurrency = "USD"

// PriceFetcher fetches end-of-day data for a batch of symbols.
type PriceFetcher interface {
	FetchEOD(ctx context.Context, symbols []string) ([]marketdata.EODResult, []marketdata.FetchError)
}

// RateFetcher fetches an exchange-rate matrix for a set of currency codes.
type RateFetcher interface {
	FetchMatrix(ctx context.Context, codes []string) (map[string]float64, error)
}

// Calendar resolves the most recent trading day.
type Calendar interface {
	LastTradingDay(ctx context.Context) (time.Time, error)
}

// Quoter fetches single quotes from the budgeted fallback API; used for
// admin retries of individual failed fetches.
type Quoter interface {
	EODPrice(ctx context.Context, symbol, date string) (float64, string, error)
	ExchangeRate(ctx context.Context, from, to string) (float64, error)
}

// Runner coordinates the refresh jobs against the provider clients and the
// persistence services.
type Runner struct {
	prices     PriceFetcher
	fx         RateFetcher
	calendar   Calendar
	quotes     Quoter
	securities services.SecurityServicer
	currencies services.CurrencyServicer
	rates      services.RateServicer
	logs       services.FetchLogServicer
	status     services.StatusServicer
	logger     *zap.SugaredLogger
	now        func() time.Time // overridable for tests
}

// NewRunner creates a refresh Runner.
func NewRunner(
	prices PriceFetcher,
	fx RateFetcher,
	calendar Calendar,
	quotes Quoter,
	securities services.SecurityServicer,
	currencies services.CurrencyServicer,
	rates services.RateServicer,
	logs services.FetchLogServicer,
	status services.StatusServicer,
	logger *zap.SugaredLogger,
) *Runner {
	return &Runner{
		prices:     prices,
		fx:         fx,
		calendar:   calendar,
		quotes:     quotes,
		securities: securities,
		currencies: currencies,
		rates:      rates,
		logs:       logs,
		status:     status,
		logger:     logger,
		now:        time.Now,
	}
}

// RunAll runs both refresh jobs in order. Used by the daily schedule and at
// boot. Each job keeps its own staleness gate, so a job that already ran
// today is skipped without provider calls.
func (r *Runner) RunAll(ctx context.Context) {
	if err := r.RefreshSecurityPrices(ctx, false); err != nil {
		r.logger.Errorw("Security price refresh failed", "error", err)
	}
	if err := r.RefreshExchangeRates(ctx, false); err != nil {
		r.logger.Errorw("Exchange rate refresh failed", "error", err)
	}
}

// tradingDay resolves the last trading day, falling back to today's UTC
// date when the calendar lookup fails.
func (r *Runner) tradingDay(ctx context.Context) time.Time {
	day, err := r.calendar.LastTradingDay(ctx)
	if err != nil {
		r.logger.Warnw("Trading day lookup failed, falling back to today", "error", err)
		now := r.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return day
}

// runStatus classifies a run from its success and failure counts.
func runStatus(succeeded, failed int) models.FetchStatus {
	switch {
	case failed == 0:
		return models.FetchStatusSuccess
	case succeeded == 0:
		return models.FetchStatusFailed
	default:
		return models.FetchStatusPartial
	}
}

func runSummary(succeeded, failed int) string {
	return fmt.Sprintf("%d succeeded, %d failed", succeeded, failed)
}
