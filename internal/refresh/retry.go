package refresh

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/services"
)

// RetryFetchLog re-attempts a single failed fetch through the budgeted
// quote API. Only FAILED rows under the retry cap are eligible; the row's
// retry counter is bumped whether or not the attempt works, and a working
// attempt flips the row to SUCCESS. The updated row is returned.
func (r *Runner) RetryFetchLog(ctx context.Context, id string) (*models.FetchLog, error) {
	log, err := r.logs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if log.Status != models.FetchStatusFailed {
		return nil, apperrors.ErrRetryNotFailed
	}
	if log.RetryCount >= services.MaxRetries {
		return nil, apperrors.ErrRetryLimitReached
	}

	var attemptErr error
	switch log.FetchType {
	case models.FetchTypeSecurity:
		attemptErr = r.retrySecurity(ctx, log.Symbol)
	case models.FetchTypeExchange:
		attemptErr = r.retryExchange(ctx, log.Symbol)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown fetch type")
	}

	if attemptErr != nil {
		r.logger.Warnw("Fetch retry failed", "symbol", log.Symbol, "type", log.FetchType, "error", attemptErr)
	} else {
		r.logger.Infow("Fetch retry succeeded", "symbol", log.Symbol, "type", log.FetchType)
	}

	return r.logs.RecordRetry(id, attemptErr == nil)
}

// retrySecurity fetches one symbol's end-of-day close from the quote API
// and upserts it.
func (r *Runner) retrySecurity(ctx context.Context, symbol string) error {
	security, err := r.securities.GetSecurityBySymbol(symbol)
	if err != nil {
		return err
	}

	price, datetime, err := r.quotes.EODPrice(ctx, symbol, "")
	if err != nil {
		return err
	}

	tradingDay, parseErr := time.Parse("2006-01-02", datetime)
	if parseErr != nil {
		tradingDay = r.tradingDay(ctx)
	}

	cents := int64(math.Round(price * 100))
	return r.securities.UpsertPrice(security.ID, cents, 0, tradingDay)
}

// retryExchange fetches one currency pair ("USD/EUR") from the quote API
// and upserts it.
func (r *Runner) retryExchange(ctx context.Context, pair string) error {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 {
		return fmt.Errorf("malformed currency pair %q", pair)
	}

	from, err := r.currencies.GetCurrencyByCode(parts[0])
	if err != nil {
		return err
	}
	to, err := r.currencies.GetCurrencyByCode(parts[1])
	if err != nil {
		return err
	}

	rate, err := r.quotes.ExchangeRate(ctx, from.Code, to.Code)
	if err != nil {
		return err
	}

	return r.rates.UpsertRate(from.ID, to.ID, rate, r.tradingDay(ctx))
}
