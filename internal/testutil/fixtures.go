package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bondfolio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	username := fmt.Sprintf("user%d", nextID())
	return CreateTestUserWithName(t, db, username, false)
}

// CreateTestAdmin creates a user with the admin flag set.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	username := fmt.Sprintf("admin%d", nextID())
	return CreateTestUserWithName(t, db, username, true)
}

// CreateTestUserWithName creates a user with the given username.
func CreateTestUserWithName(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Password: string(hash),
		IsAdmin:  isAdmin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCurrency creates a currency with the given ISO code.
func CreateTestCurrency(t *testing.T, db *gorm.DB, code string) *models.Currency {
	t.Helper()

	currency := &models.Currency{Code: code, Name: code + " test currency"}
	if err := db.Create(currency).Error; err != nil {
		t.Fatalf("failed to create test currency: %v", err)
	}
	return currency
}

// CreateTestSecurity creates a security priced in the given currency.
func CreateTestSecurity(t *testing.T, db *gorm.DB, symbol, currencyID string) *models.Security {
	t.Helper()

	security := &models.Security{
		Symbol:     symbol,
		Name:       symbol + " test security",
		CurrencyID: currencyID,
	}
	if err := db.Create(security).Error; err != nil {
		t.Fatalf("failed to create test security: %v", err)
	}
	return security
}

// CreateTestPrice creates a stored end-of-day price row.
func CreateTestPrice(t *testing.T, db *gorm.DB, securityID string, price int64, tradingDay time.Time) *models.SecurityPrice {
	t.Helper()

	row := &models.SecurityPrice{
		SecurityID: securityID,
		Price:      price,
		Volume:     1000,
		TradingDay: tradingDay,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test price: %v", err)
	}
	return row
}

// CreateTestRate creates a stored exchange rate row.
func CreateTestRate(t *testing.T, db *gorm.DB, fromCurrencyID, toCurrencyID string, rate float64, tradingDay time.Time) *models.ExchangeRate {
	t.Helper()

	row := &models.ExchangeRate{
		FromCurrencyID: fromCurrencyID,
		ToCurrencyID:   toCurrencyID,
		Rate:           rate,
		TradingDay:     tradingDay,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test rate: %v", err)
	}
	return row
}

// CreateTestPortfolio creates a portfolio owned by the given user.
func CreateTestPortfolio(t *testing.T, db *gorm.DB, userID, currencyID string) *models.Portfolio {
	t.Helper()

	portfolio := &models.Portfolio{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Portfolio %d", nextID()),
		CurrencyID: currencyID,
	}
	if err := db.Create(portfolio).Error; err != nil {
		t.Fatalf("failed to create test portfolio: %v", err)
	}
	return portfolio
}

// CreateTestHolding adds a security position to a portfolio.
func CreateTestHolding(t *testing.T, db *gorm.DB, portfolioID, securityID string, quantity float64) *models.PortfolioHolding {
	t.Helper()

	holding := &models.PortfolioHolding{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		Quantity:    quantity,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestFetchLog creates a fetch log row with the given outcome.
func CreateTestFetchLog(t *testing.T, db *gorm.DB, symbol string, fetchType models.FetchType, status models.FetchStatus) *models.FetchLog {
	t.Helper()

	row := &models.FetchLog{
		Symbol:    symbol,
		FetchType: fetchType,
		Status:    status,
		FetchTime: time.Now().UTC(),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test fetch log: %v", err)
	}
	return row
}

// Day returns a UTC calendar date for fixtures.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
