package models

import (
	"time"

	"bondfolio/internal/uuid"

	"gorm.io/gorm"
)

// ExchangeRate holds one FX rate row per ordered currency pair and trading
// day. Self pairs always carry rate 1.0. Immutable time-series data — no
// Base embed, no soft deletes.
type ExchangeRate struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	FromCurrencyID string    `gorm:"type:uuid;not null;uniqueIndex:uq_exchange_rates_day" json:"from_currency_id"`
	ToCurrencyID   string    `gorm:"type:uuid;not null;uniqueIndex:uq_exchange_rates_day" json:"to_currency_id"`
	Rate           float64   `gorm:"not null" json:"rate"`
	TradingDay     time.Time `gorm:"not null;uniqueIndex:uq_exchange_rates_day" json:"trading_day"`

	FromCurrency Currency `gorm:"foreignKey:FromCurrencyID" json:"from_currency,omitempty"`
	ToCurrency   Currency `gorm:"foreignKey:ToCurrencyID" json:"to_currency,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (e *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}
