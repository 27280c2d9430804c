package refresh

import (
	"context"

	"bondfolio/internal/models"
)

// RefreshSecurityPrices fetches the latest end-of-day price for every
// tracked security and upserts it keyed on (security, trading day). Unless
// forced, the job is a no-op when prices were already refreshed today. One
// bad symbol never aborts the run: each failure is logged individually and
// the run summary records SUCCESS, PARTIAL, or FAILED. The refreshed-on
// date is advanced once the run completes, whatever the per-symbol outcome;
// only a run that never reaches the provider leaves the gate stale.
func (r *Runner) RefreshSecurityPrices(ctx context.Context, force bool) error {
	if !force {
		fresh, err := r.status.RefreshedToday(models.RefreshDomainSecurities, r.now())
		if err != nil {
			return err
		}
		if fresh {
			r.logger.Debugw("Security prices already refreshed today, skipping")
			return nil
		}
	}

	symbols, err := r.securities.AllSymbols()
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		r.logger.Infow("No securities to refresh")
		if err := r.logs.LogRun(models.FetchTypeSecurity, models.FetchStatusSuccess, "no securities tracked"); err != nil {
			return err
		}
		return r.status.MarkRefreshed(models.RefreshDomainSecurities, r.now())
	}

	r.logger.Infow("Refreshing security prices", "symbols", len(symbols))
	results, fetchErrors := r.prices.FetchEOD(ctx, symbols)

	succeeded := 0
	failed := 0

	for _, fe := range fetchErrors {
		failed++
		r.logger.Warnw("Price fetch failed", "symbol", fe.Symbol, "error", fe.Err)
		if err := r.logs.LogFailure(fe.Symbol, models.FetchTypeSecurity, fe.Err.Error()); err != nil {
			return err
		}
	}

	for _, result := range results {
		security, err := r.securities.GetSecurityBySymbol(result.Symbol)
		if err != nil {
			failed++
			if logErr := r.logs.LogFailure(result.Symbol, models.FetchTypeSecurity, err.Error()); logErr != nil {
				return logErr
			}
			continue
		}
		if err := r.securities.UpsertPrice(security.ID, result.Price, result.Volume, result.TradingDay); err != nil {
			failed++
			r.logger.Warnw("Price upsert failed", "symbol", result.Symbol, "error", err)
			if logErr := r.logs.LogFailure(result.Symbol, models.FetchTypeSecurity, err.Error()); logErr != nil {
				return logErr
			}
			continue
		}
		succeeded++
	}

	status := runStatus(succeeded, failed)
	if err := r.logs.LogRun(models.FetchTypeSecurity, status, runSummary(succeeded, failed)); err != nil {
		return err
	}
	r.logger.Infow("Security price refresh finished", "status", status, "succeeded", succeeded, "failed", failed)

	return r.status.MarkRefreshed(models.RefreshDomainSecurities, r.now())
}
