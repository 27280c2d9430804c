package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
)

// rateService persists and queries exchange rates.
type rateService struct {
	db *gorm.DB
}

// NewRateService creates a new RateServicer.
func NewRateService(db *gorm.DB) RateServicer {
	return &rateService{db: db}
}

// UpsertRate stores a rate for the ordered pair and trading day. A second
// call for the same pair and day updates the stored rate in place rather
// than inserting a duplicate row.
func (s *rateService) UpsertRate(fromCurrencyID, toCurrencyID string, rate float64, tradingDay time.Time) error {
	day := truncateToDay(tradingDay)

	var existing models.ExchangeRate
	err := s.db.Where("from_currency_id = ? AND to_currency_id = ? AND trading_day = ?",
		fromCurrencyID, toCurrencyID, day).First(&existing).Error
	if err == nil {
		if err := s.db.Model(&existing).Update("rate", rate).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	row := &models.ExchangeRate{
		FromCurrencyID: fromCurrencyID,
		ToCurrencyID:   toCurrencyID,
		Rate:           rate,
		TradingDay:     day,
	}
	if err := s.db.Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// LatestRate returns the most recent rate for converting from one currency
// to another. Self pairs always return 1.0. When no direct row exists the
// reciprocal of the reverse pair is used; when neither exists the second
// return value is false and the rate defaults to 1.0.
func (s *rateService) LatestRate(fromCurrencyID, toCurrencyID string) (float64, bool, error) {
	if fromCurrencyID == toCurrencyID {
		return 1.0, true, nil
	}

	var row models.ExchangeRate
	err := s.db.Where("from_currency_id = ? AND to_currency_id = ?", fromCurrencyID, toCurrencyID).
		Order("trading_day DESC").First(&row).Error
	if err == nil {
		return row.Rate, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Reverse pair fallback.
	err = s.db.Where("from_currency_id = ? AND to_currency_id = ?", toCurrencyID, fromCurrencyID).
		Order("trading_day DESC").First(&row).Error
	if err == nil && row.Rate != 0 {
		return 1.0 / row.Rate, true, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return 1.0, false, nil
}

// truncateToDay normalizes a timestamp to midnight UTC so that same-day
// lookups match regardless of the source timestamp's clock component.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
