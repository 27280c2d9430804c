package services

import (
	"time"

	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password, email string, defaultCurrencyID *string, isAdmin bool) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(id string, email *string, defaultCurrencyID *string, isAdmin *bool, password *string) (*models.User, error)
	DeleteUser(id string) error
}

// CurrencyServicer defines the contract for currency reference data.
type CurrencyServicer interface {
	CreateCurrency(code, name string) (*models.Currency, error)
	GetCurrencyByCode(code string) (*models.Currency, error)
	GetCurrencyByID(id string) (*models.Currency, error)
	ListCurrencies() ([]models.Currency, error)
	AllCodes() ([]string, error)
	DeleteCurrency(id string) error
}

// RateServicer defines the contract for exchange-rate persistence.
type RateServicer interface {
	UpsertRate(fromCurrencyID, toCurrencyID string, rate float64, tradingDay time.Time) error
	// LatestRate returns the most recent stored rate for the ordered pair.
	// When no direct row exists it falls back to the reciprocal of the
	// reverse pair; when neither exists it returns 1.0 and false.
	LatestRate(fromCurrencyID, toCurrencyID string) (float64, bool, error)
}

// ReferenceServicer defines the contract for the static lookup tables.
type ReferenceServicer interface {
	ListRegions() ([]models.Region, error)
	ListSectors() ([]models.Sector, error)
	ListCategories() ([]models.SecurityCategory, error)
	ListExchanges() ([]models.Exchange, error)
	CreateExchange(name string, regionID *string) (*models.Exchange, error)
	GetSectorByName(name string) (*models.Sector, error)
	GetCategoryByName(name string) (*models.SecurityCategory, error)
	GetExchangeByName(name string) (*models.Exchange, error)
}

// SecurityInput holds the fields for creating or updating a security.
type SecurityInput struct {
	Symbol      string
	Name        string
	CategoryID  *string
	CurrencyID  string
	ExchangeID  *string
	SectorID    *string
	Country     string
	Website     string
	Industry    string
	Description string
}

// SecurityServicer defines the contract for security-related business logic.
type SecurityServicer interface {
	CreateSecurity(input SecurityInput) (*models.Security, error)
	UpdateSecurity(id string, input SecurityInput) (*models.Security, error)
	DeleteSecurity(id string) error
	GetSecurityByID(id string) (*models.Security, error)
	GetSecurityBySymbol(symbol string) (*models.Security, error)
	ListSecurities(page pagination.PageRequest) (*pagination.PageResponse[models.Security], error)
	AllSymbols() ([]string, error)
	UpsertPrice(securityID string, price, volume int64, tradingDay time.Time) error
	LatestPrice(securityID string) (*models.SecurityPrice, error)
	GetPriceHistory(securityID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.SecurityPrice], error)
}

// PositionValue is one holding valued in the portfolio currency.
type PositionValue struct {
	SecurityID   string     `json:"security_id"`
	Symbol       string     `json:"symbol"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Price        int64      `json:"price,omitempty"` // cents, security currency
	TradingDay   *time.Time `json:"trading_day,omitempty"`
	Value        int64      `json:"value"`         // cents, portfolio currency
	PricedStatus string     `json:"priced_status"` // "priced" or "no_data"
}

// PortfolioValuation is a portfolio's total value plus per-position detail.
type PortfolioValuation struct {
	PortfolioID string          `json:"portfolio_id"`
	Currency    string          `json:"currency"`
	TotalValue  int64           `json:"total_value"` // cents
	Positions   []PositionValue `json:"positions"`
}

// BreakdownItem is one slice of a portfolio breakdown.
type BreakdownItem struct {
	Name    string  `json:"name"`
	Value   int64   `json:"value"` // cents, portfolio currency
	Percent float64 `json:"percent"`
}

// Breakdown groups a portfolio's value by sector, region, or category.
type Breakdown struct {
	PortfolioID string          `json:"portfolio_id"`
	Currency    string          `json:"currency"`
	TotalValue  int64           `json:"total_value"`
	Items       []BreakdownItem `json:"items"`
}

// BreakdownDimension selects the grouping axis for a portfolio breakdown.
type BreakdownDimension string

const (
	BreakdownBySector   BreakdownDimension = "sector"
	BreakdownByRegion   BreakdownDimension = "region"
	BreakdownByCategory BreakdownDimension = "category"
)

// PortfolioServicer defines the contract for portfolio-related business logic.
type PortfolioServicer interface {
	CreatePortfolio(userID, name, description, currencyID string) (*models.Portfolio, error)
	GetUserPortfolios(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Portfolio], error)
	GetPortfolioByID(userID, portfolioID string) (*models.Portfolio, error)
	UpdatePortfolio(userID, portfolioID string, name, description *string, currencyID *string) (*models.Portfolio, error)
	DeletePortfolio(userID, portfolioID string) error
	AddHolding(userID, portfolioID, securityID string, quantity float64) (*models.PortfolioHolding, error)
	UpdateHolding(userID, portfolioID, holdingID string, quantity float64) (*models.PortfolioHolding, error)
	RemoveHolding(userID, portfolioID, holdingID string) error
	ListHoldings(userID, portfolioID string) ([]models.PortfolioHolding, error)
	Valuation(userID, portfolioID string) (*PortfolioValuation, error)
	BreakdownBy(userID, portfolioID string, dimension BreakdownDimension) (*Breakdown, error)
}

// FetchLogServicer defines the contract for the operational fetch log.
type FetchLogServicer interface {
	LogRun(fetchType models.FetchType, status models.FetchStatus, message string) error
	LogFailure(symbol string, fetchType models.FetchType, message string) error
	List(page pagination.PageRequest, fetchType *models.FetchType, status *models.FetchStatus) (*pagination.PageResponse[models.FetchLog], error)
	GetByID(id string) (*models.FetchLog, error)
	RecordRetry(id string, succeeded bool) (*models.FetchLog, error)
}

// StatusServicer defines the contract for the refresh-status singleton.
type StatusServicer interface {
	Get() (*models.RefreshStatus, error)
	// RefreshedToday reports whether the domain's stored date equals today.
	RefreshedToday(domain models.RefreshDomain, today time.Time) (bool, error)
	MarkRefreshed(domain models.RefreshDomain, date time.Time) error
	// Reset clears the domain's date to force a re-run.
	Reset(domain models.RefreshDomain) error
}
