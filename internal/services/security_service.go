package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
)

// securityService handles security reference data and its price series.
type securityService struct {
	db *gorm.DB
}

// NewSecurityService creates a new SecurityServicer.
func NewSecurityService(db *gorm.DB) SecurityServicer {
	return &securityService{db: db}
}

// CreateSecurity creates a new tracked security.
func (s *securityService) CreateSecurity(input SecurityInput) (*models.Security, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	security := &models.Security{
		Symbol:      symbol,
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		CurrencyID:  input.CurrencyID,
		ExchangeID:  input.ExchangeID,
		SectorID:    input.SectorID,
		Country:     input.Country,
		Website:     input.Website,
		Industry:    input.Industry,
		Description: input.Description,
	}
	if err := s.db.Create(security).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateSecurity
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return security, nil
}

// UpdateSecurity updates an existing security's fields.
func (s *securityService) UpdateSecurity(id string, input SecurityInput) (*models.Security, error) {
	security, err := s.GetSecurityByID(id)
	if err != nil {
		return nil, err
	}

	security.Symbol = strings.ToUpper(strings.TrimSpace(input.Symbol))
	security.Name = input.Name
	security.CategoryID = input.CategoryID
	security.CurrencyID = input.CurrencyID
	security.ExchangeID = input.ExchangeID
	security.SectorID = input.SectorID
	security.Country = input.Country
	security.Website = input.Website
	security.Industry = input.Industry
	security.Description = input.Description

	if err := s.db.Save(security).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateSecurity
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return security, nil
}

// DeleteSecurity removes a security along with its price history.
func (s *securityService) DeleteSecurity(id string) error {
	var holdingCount int64
	if err := s.db.Model(&models.PortfolioHolding{}).Where("security_id = ?", id).Count(&holdingCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if holdingCount > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Security is held in one or more portfolios")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("security_id = ?", id).Delete(&models.SecurityPrice{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Security{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrSecurityNotFound
		}
		return nil
	})
}

// GetSecurityByID returns a security with its reference relations loaded.
func (s *securityService) GetSecurityByID(id string) (*models.Security, error) {
	var security models.Security
	err := s.db.Preload("Category").Preload("Currency").Preload("Exchange").Preload("Sector").
		Where("id = ?", id).First(&security).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &security, nil
}

// GetSecurityBySymbol returns a security by its ticker symbol.
func (s *securityService) GetSecurityBySymbol(symbol string) (*models.Security, error) {
	var security models.Security
	err := s.db.Preload("Currency").Where("symbol = ?", strings.ToUpper(symbol)).First(&security).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &security, nil
}

// ListSecurities returns a paginated list of securities ordered by symbol.
func (s *securityService) ListSecurities(page pagination.PageRequest) (*pagination.PageResponse[models.Security], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Security{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var securities []models.Security
	err := s.db.Preload("Category").Preload("Currency").Preload("Exchange").Preload("Sector").
		Order("symbol ASC").Scopes(pagination.Paginate(page)).Find(&securities).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(securities, page.Page, page.PageSize, totalItems)
	return &response, nil
}

// AllSymbols returns every tracked symbol ordered alphabetically. This is
// the input set for the daily price refresh.
func (s *securityService) AllSymbols() ([]string, error) {
	var symbols []string
	if err := s.db.Model(&models.Security{}).Order("symbol ASC").Pluck("symbol", &symbols).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return symbols, nil
}

// UpsertPrice stores an end-of-day price for a security and trading day.
// A second call for the same security and day updates the stored row in
// place rather than inserting a duplicate.
func (s *securityService) UpsertPrice(securityID string, price, volume int64, tradingDay time.Time) error {
	day := truncateToDay(tradingDay)

	var existing models.SecurityPrice
	err := s.db.Where("security_id = ? AND trading_day = ?", securityID, day).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{"price": price, "volume": volume}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	row := &models.SecurityPrice{
		SecurityID: securityID,
		Price:      price,
		Volume:     volume,
		TradingDay: day,
	}
	if err := s.db.Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// LatestPrice returns the most recent stored price row for a security.
func (s *securityService) LatestPrice(securityID string) (*models.SecurityPrice, error) {
	var price models.SecurityPrice
	err := s.db.Where("security_id = ?", securityID).Order("trading_day DESC").First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &price, nil
}

// GetPriceHistory returns a security's stored prices within a date range,
// newest first.
func (s *securityService) GetPriceHistory(securityID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.SecurityPrice], error) {
	page.Defaults()

	query := s.db.Model(&models.SecurityPrice{}).Where("security_id = ?", securityID)
	if !from.IsZero() {
		query = query.Where("trading_day >= ?", truncateToDay(from))
	}
	if !to.IsZero() {
		query = query.Where("trading_day <= ?", truncateToDay(to))
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var prices []models.SecurityPrice
	err := query.Order("trading_day DESC").Scopes(pagination.Paginate(page)).Find(&prices).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(prices, page.Page, page.PageSize, totalItems)
	return &response, nil
}
