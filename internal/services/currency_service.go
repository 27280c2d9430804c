package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
)

// currencyService handles currency reference data.
type currencyService struct {
	db *gorm.DB
}

// NewCurrencyService creates a new CurrencyServicer.
func NewCurrencyService(db *gorm.DB) CurrencyServicer {
	return &currencyService{db: db}
}

// CreateCurrency creates a new currency record.
func (s *currencyService) CreateCurrency(code, name string) (*models.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Currency code must be three letters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Currency name is required")
	}

	currency := &models.Currency{Code: code, Name: name}
	if err := s.db.Create(currency).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateCurrency
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return currency, nil
}

// GetCurrencyByCode returns a currency by its ISO code.
func (s *currencyService) GetCurrencyByCode(code string) (*models.Currency, error) {
	var currency models.Currency
	if err := s.db.Where("code = ?", strings.ToUpper(code)).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &currency, nil
}

// GetCurrencyByID returns a currency by its ID.
func (s *currencyService) GetCurrencyByID(id string) (*models.Currency, error) {
	var currency models.Currency
	if err := s.db.Where("id = ?", id).First(&currency).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCurrencyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &currency, nil
}

// ListCurrencies returns all currencies ordered by code.
func (s *currencyService) ListCurrencies() ([]models.Currency, error) {
	var currencies []models.Currency
	if err := s.db.Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return currencies, nil
}

// AllCodes returns every tracked currency code, ordered.
func (s *currencyService) AllCodes() ([]string, error) {
	var codes []string
	if err := s.db.Model(&models.Currency{}).Order("code ASC").Pluck("code", &codes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return codes, nil
}

// DeleteCurrency removes a currency unless securities or portfolios still
// reference it.
func (s *currencyService) DeleteCurrency(id string) error {
	var securityCount int64
	if err := s.db.Model(&models.Security{}).Where("currency_id = ?", id).Count(&securityCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var portfolioCount int64
	if err := s.db.Model(&models.Portfolio{}).Where("currency_id = ?", id).Count(&portfolioCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if securityCount > 0 || portfolioCount > 0 {
		return apperrors.ErrCurrencyInUse
	}

	result := s.db.Where("id = ?", id).Delete(&models.Currency{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrCurrencyNotFound
	}
	return nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
