package models

import "time"

// RefreshDomain identifies which daily refresh job a status date belongs to.
type RefreshDomain string

const (
	RefreshDomainSecurities    RefreshDomain = "securities"
	RefreshDomainExchangeRates RefreshDomain = "exchange_rates"
)

// RefreshStatusID is the primary key of the singleton status row.
const RefreshStatusID = 1

// RefreshStatus is the single-row table recording the last date each daily
// refresh job ran. It gates the "already refreshed today" check and is
// mutated only by the refresh jobs and by admin force-refresh actions,
// which reset a date to force a re-run.
type RefreshStatus struct {
	ID                       int        `gorm:"primaryKey" json:"id"`
	SecuritiesRefreshedOn    *time.Time `json:"securities_refreshed_on,omitempty"`
	ExchangeRatesRefreshedOn *time.Time `json:"exchange_rates_refreshed_on,omitempty"`
	GeneratedAt              time.Time  `json:"generated_at"`
}
