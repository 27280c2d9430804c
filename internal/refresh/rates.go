package refresh

import (
	"context"
	"fmt"

	"bondfolio/internal/models"
)

// RefreshExchangeRates fetches rates for every ordered pair of tracked
// currencies and upserts them keyed on (pair, trading day). Pairs the
// provider has no direct quote for are derived through the base currency:
// rate(A,B) = rate(USD,B) / rate(USD,A). Self pairs are stored as 1.0.
// Unless forced, the job is a no-op when rates were already refreshed today.
func (r *Runner) RefreshExchangeRates(ctx context.Context, force bool) error {
	if !force {
		fresh, err := r.status.RefreshedToday(models.RefreshDomainExchangeRates, r.now())
		if err != nil {
			return err
		}
		if fresh {
			r.logger.Debugw("Exchange rates already refreshed today, skipping")
			return nil
		}
	}

	currencies, err := r.currencies.ListCurrencies()
	if err != nil {
		return err
	}
	idByCode := make(map[string]string, len(currencies))
	var codes []string
	for _, c := range currencies {
		idByCode[c.Code] = c.ID
		codes = append(codes, c.Code)
	}

	r.logger.Infow("Refreshing exchange rates", "currencies", len(codes))
	matrix, err := r.fx.FetchMatrix(ctx, codes)
	if err != nil {
		r.logger.Errorw("Rate matrix fetch failed", "error", err)
		return r.logs.LogRun(models.FetchTypeExchange, models.FetchStatusFailed, err.Error())
	}

	tradingDay := r.tradingDay(ctx)

	succeeded := 0
	failed := 0
	for _, from := range codes {
		for _, to := range codes {
			rate, ok := resolveRate(matrix, from, to)
			if !ok {
				failed++
				pair := from + "/" + to
				r.logger.Warnw("No rate available", "pair", pair)
				if err := r.logs.LogFailure(pair, models.FetchTypeExchange, fmt.Sprintf("no rate for %s", pair)); err != nil {
					return err
				}
				continue
			}
			if err := r.rates.UpsertRate(idByCode[from], idByCode[to], rate, tradingDay); err != nil {
				failed++
				if logErr := r.logs.LogFailure(from+"/"+to, models.FetchTypeExchange, err.Error()); logErr != nil {
					return logErr
				}
				continue
			}
			succeeded++
		}
	}

	status := runStatus(succeeded, failed)
	if err := r.logs.LogRun(models.FetchTypeExchange, status, runSummary(succeeded, failed)); err != nil {
		return err
	}
	r.logger.Infow("Exchange rate refresh finished", "status", status, "succeeded", succeeded, "failed", failed)

	return r.status.MarkRefreshed(models.RefreshDomainExchangeRates, r.now())
}

// resolveRate looks a pair up in the fetched matrix, deriving a cross rate
// through the base currency when no direct quote exists.
func resolveRate(matrix map[string]float64, from, to string) (float64, bool) {
	if from == to {
		return 1.0, true
	}
	if rate, ok := matrix[from+to]; ok && rate > 0 {
		return rate, true
	}
	// Invert the reverse quote when the provider only has one direction.
	if reverse, ok := matrix[to+from]; ok && reverse > 0 {
		return 1.0 / reverse, true
	}

	// Cross rate through the base currency.
	usdTo, okTo := usdRate(matrix, to)
	usdFrom, okFrom := usdRate(matrix, from)
	if okTo && okFrom && usdFrom > 0 {
		return usdTo / usdFrom, true
	}
	return 0, false
}

// usdRate returns rate(USD, code) directly or via the inverted reverse quote.
func usdRate(matrix map[string]float64, code string) (float64, bool) {
	if code == baseCurrency {
		return 1.0, true
	}
	if rate, ok := matrix[baseCurrency+code]; ok && rate > 0 {
		return rate, true
	}
	if reverse, ok := matrix[code+baseCurrency]; ok && reverse > 0 {
		return 1.0 / reverse, true
	}
	return 0, false
}
