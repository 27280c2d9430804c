package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
)

const unclassifiedBucket = "Unclassified"

// portfolioService handles portfolio CRUD, holdings, and valuation.
type portfolioService struct {
	db    *gorm.DB
	rates RateServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, rates RateServicer) PortfolioServicer {
	return &portfolioService{db: db, rates: rates}
}

// CreatePortfolio creates a portfolio owned by the given user.
func (s *portfolioService) CreatePortfolio(userID, name, description, currencyID string) (*models.Portfolio, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Portfolio name is required")
	}

	portfolio := &models.Portfolio{
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
		CurrencyID:  currencyID,
	}
	if err := s.db.Create(portfolio).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return portfolio, nil
}

// GetUserPortfolios returns the user's portfolios, newest first.
func (s *portfolioService) GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Portfolio{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var portfolios []models.Portfolio
	err := s.db.Preload("Currency").Where("user_id = ?", userID).
		Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&portfolios).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(portfolios, page.Page, page.PageSize, totalItems)
	return &response, nil
}

// GetPortfolioByID returns a portfolio owned by the given user. A portfolio
// belonging to another user reads as not found rather than forbidden.
func (s *portfolioService) GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.db.Preload("Currency").
		Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPortfolioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// UpdatePortfolio updates the provided fields of an owned portfolio.
func (s *portfolioService) UpdatePortfolio(userID, portfolioID string, name, description *string, currencyID *string) (*models.Portfolio, error) {
	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Portfolio name is required")
		}
		updates["name"] = strings.TrimSpace(*name)
	}
	if description != nil {
		updates["description"] = *description
	}
	if currencyID != nil {
		updates["currency_id"] = *currencyID
	}
	if len(updates) == 0 {
		return portfolio, nil
	}

	if err := s.db.Model(portfolio).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetPortfolioByID(userID, portfolioID)
}

// DeletePortfolio removes an owned portfolio and its holdings.
func (s *portfolioService) DeletePortfolio(userID, portfolioID string) error {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", portfolioID).Delete(&models.PortfolioHolding{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id = ?", portfolioID).Delete(&models.Portfolio{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddHolding adds a security position to an owned portfolio.
func (s *portfolioService) AddHolding(userID, portfolioID, securityID string, quantity float64) (*models.PortfolioHolding, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	var security models.Security
	if err := s.db.Where("id = ?", securityID).First(&security).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	holding := &models.PortfolioHolding{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		Quantity:    quantity,
	}
	if err := s.db.Create(holding).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateHolding
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	holding.Security = security
	return holding, nil
}

// UpdateHolding changes the quantity of an existing holding.
func (s *portfolioService) UpdateHolding(userID, portfolioID, holdingID string, quantity float64) (*models.PortfolioHolding, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	var holding models.PortfolioHolding
	err := s.db.Preload("Security").
		Where("id = ? AND portfolio_id = ?", holdingID, portfolioID).First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&holding).Update("quantity", quantity).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	holding.Quantity = quantity
	return &holding, nil
}

// RemoveHolding deletes a holding from an owned portfolio.
func (s *portfolioService) RemoveHolding(userID, portfolioID, holdingID string) error {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND portfolio_id = ?", holdingID, portfolioID).Delete(&models.PortfolioHolding{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// ListHoldings returns all holdings in an owned portfolio with their
// securities loaded.
func (s *portfolioService) ListHoldings(userID, portfolioID string) ([]models.PortfolioHolding, error) {
	if _, err := s.GetPortfolioByID(userID, portfolioID); err != nil {
		return nil, err
	}

	var holdings []models.PortfolioHolding
	err := s.db.Preload("Security").Preload("Security.Currency").
		Where("portfolio_id = ?", portfolioID).Find(&holdings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// Valuation values every position at its latest stored price, converted to
// the portfolio currency at the latest stored rate. Positions without any
// stored price contribute zero and are flagged as no_data.
func (s *portfolioService) Valuation(userID, portfolioID string) (*PortfolioValuation, error) {
	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.ListHoldings(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	valuation := &PortfolioValuation{
		PortfolioID: portfolio.ID,
		Currency:    portfolio.Currency.Code,
		Positions:   []PositionValue{},
	}

	for _, holding := range holdings {
		position := PositionValue{
			SecurityID: holding.SecurityID,
			Symbol:     holding.Security.Symbol,
			Name:       holding.Security.Name,
			Quantity:   holding.Quantity,
		}

		price, err := s.latestPrice(holding.SecurityID)
		if err != nil {
			return nil, err
		}
		if price == nil {
			position.PricedStatus = "no_data"
			valuation.Positions = append(valuation.Positions, position)
			continue
		}

		rate, _, err := s.rates.LatestRate(holding.Security.CurrencyID, portfolio.CurrencyID)
		if err != nil {
			return nil, err
		}

		day := price.TradingDay
		position.Price = price.Price
		position.TradingDay = &day
		position.Value = int64(math.Round(float64(price.Price) * holding.Quantity * rate))
		position.PricedStatus = "priced"

		valuation.TotalValue += position.Value
		valuation.Positions = append(valuation.Positions, position)
	}

	return valuation, nil
}

// BreakdownBy groups a portfolio's positions by sector, region, or category
// and returns each bucket's share of the total value. Positions with no
// classification on the chosen axis land in an Unclassified bucket.
func (s *portfolioService) BreakdownBy(userID, portfolioID string, dimension BreakdownDimension) (*Breakdown, error) {
	switch dimension {
	case BreakdownBySector, BreakdownByRegion, BreakdownByCategory:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown breakdown dimension")
	}

	portfolio, err := s.GetPortfolioByID(userID, portfolioID)
	if err != nil {
		return nil, err
	}

	var holdings []models.PortfolioHolding
	err = s.db.Preload("Security").Preload("Security.Currency").
		Preload("Security.Sector").Preload("Security.Category").
		Preload("Security.Exchange").Preload("Security.Exchange.Region").
		Where("portfolio_id = ?", portfolioID).Find(&holdings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	breakdown := &Breakdown{
		PortfolioID: portfolio.ID,
		Currency:    portfolio.Currency.Code,
		Items:       []BreakdownItem{},
	}

	buckets := map[string]int64{}
	for _, holding := range holdings {
		price, err := s.latestPrice(holding.SecurityID)
		if err != nil {
			return nil, err
		}
		if price == nil {
			continue
		}

		rate, _, err := s.rates.LatestRate(holding.Security.CurrencyID, portfolio.CurrencyID)
		if err != nil {
			return nil, err
		}
		value := int64(math.Round(float64(price.Price) * holding.Quantity * rate))

		bucket := bucketName(&holding.Security, dimension)
		buckets[bucket] += value
		breakdown.TotalValue += value
	}

	for name, value := range buckets {
		item := BreakdownItem{Name: name, Value: value}
		if breakdown.TotalValue > 0 {
			item.Percent = math.Round(float64(value)/float64(breakdown.TotalValue)*10000) / 100
		}
		breakdown.Items = append(breakdown.Items, item)
	}
	sort.Slice(breakdown.Items, func(i, j int) bool {
		if breakdown.Items[i].Value != breakdown.Items[j].Value {
			return breakdown.Items[i].Value > breakdown.Items[j].Value
		}
		return breakdown.Items[i].Name < breakdown.Items[j].Name
	})

	return breakdown, nil
}

// latestPrice returns the newest price row or nil when none is stored.
func (s *portfolioService) latestPrice(securityID string) (*models.SecurityPrice, error) {
	var price models.SecurityPrice
	err := s.db.Where("security_id = ?", securityID).Order("trading_day DESC").First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &price, nil
}

func bucketName(security *models.Security, dimension BreakdownDimension) string {
	switch dimension {
	case BreakdownBySector:
		if security.Sector != nil {
			return security.Sector.Name
		}
	case BreakdownByRegion:
		if security.Exchange != nil && security.Exchange.Region != nil {
			return security.Exchange.Region.Name
		}
	case BreakdownByCategory:
		if security.Category != nil {
			return security.Category.Name
		}
	}
	return unclassifiedBucket
}
