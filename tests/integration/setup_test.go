package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bondfolio/internal/handlers"
	"bondfolio/internal/logger"
	"bondfolio/internal/marketdata"
	"bondfolio/internal/middleware"
	"bondfolio/internal/models"
	"bondfolio/internal/refresh"
	"bondfolio/internal/services"
	"bondfolio/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Providers *stubProviders
}

// stubProviders stands in for the external market-data APIs so the refresh
// pipeline can run end to end without network access.
type stubProviders struct {
	EODResults []marketdata.EODResult
	EODErrors  []marketdata.FetchError
	Matrix     map[string]float64
	TradingDay time.Time
	QuotePrice float64
	QuoteDate  string
	QuoteRate  float64
	InfoResult *marketdata.SecurityInfo
}

var (
	_ refresh.PriceFetcher     = (*stubProviders)(nil)
	_ refresh.RateFetcher      = (*stubProviders)(nil)
	_ refresh.Calendar         = (*stubProviders)(nil)
	_ refresh.Quoter           = (*stubProviders)(nil)
	_ handlers.InfoProvider    = (*stubProviders)(nil)
	_ handlers.TradingCalendar = (*stubProviders)(nil)
	_ handlers.QuoteProvider   = (*stubProviders)(nil)
)

func (s *stubProviders) FetchEOD(_ context.Context, _ []string) ([]marketdata.EODResult, []marketdata.FetchError) {
	return s.EODResults, s.EODErrors
}

func (s *stubProviders) FetchMatrix(_ context.Context, codes []string) (map[string]float64, error) {
	matrix := map[string]float64{}
	for _, code := range codes {
		matrix[code+code] = 1.0
	}
	for pair, rate := range s.Matrix {
		matrix[pair] = rate
	}
	return matrix, nil
}

func (s *stubProviders) LastTradingDay(_ context.Context) (time.Time, error) {
	return s.TradingDay, nil
}

func (s *stubProviders) EODPrice(_ context.Context, _, _ string) (float64, string, error) {
	return s.QuotePrice, s.QuoteDate, nil
}

func (s *stubProviders) ExchangeRate(_ context.Context, _, _ string) (float64, error) {
	return s.QuoteRate, nil
}

func (s *stubProviders) Info(_ context.Context, symbol string) (*marketdata.SecurityInfo, error) {
	if s.InfoResult == nil {
		return nil, fmt.Errorf("no info for %s", symbol)
	}
	return s.InfoResult, nil
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:apptest%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Currency{},
		&models.Region{},
		&models.Sector{},
		&models.SecurityCategory{},
		&models.Exchange{},
		&models.User{},
		&models.Security{},
		&models.SecurityPrice{},
		&models.ExchangeRate{},
		&models.Portfolio{},
		&models.PortfolioHolding{},
		&models.RefreshStatus{},
		&models.FetchLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	providers := &stubProviders{
		TradingDay: time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC),
	}

	// Services
	userService := services.NewUserService(db)
	currencyService := services.NewCurrencyService(db)
	referenceService := services.NewReferenceService(db)
	securityService := services.NewSecurityService(db)
	rateService := services.NewRateService(db)
	portfolioService := services.NewPortfolioService(db, rateService)
	fetchLogService := services.NewFetchLogService(db)
	statusService := services.NewStatusService(db)

	runner := refresh.NewRunner(providers, providers, providers, providers,
		securityService, currencyService, rateService, fetchLogService, statusService,
		zap.NewNop().Sugar())

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, currencyService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)
	securityHandler := handlers.NewSecurityHandler(securityService, currencyService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, currencyService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	marketHandler := handlers.NewMarketHandler(providers, providers, providers, statusService)
	adminHandler := handlers.NewAdminHandler(userService, currencyService, fetchLogService, statusService, runner)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/currencies", currencyHandler.List)

	securities := protected.Group("/securities")
	securities.GET("", securityHandler.List)
	securities.GET("/:id", securityHandler.Get)
	securities.GET("/:id/prices", securityHandler.GetPrices)

	portfolios := protected.Group("/portfolios")
	portfolios.POST("", portfolioHandler.Create)
	portfolios.GET("", portfolioHandler.List)
	portfolios.GET("/:id", portfolioHandler.Get)
	portfolios.PUT("/:id", portfolioHandler.Update)
	portfolios.DELETE("/:id", portfolioHandler.Delete)
	portfolios.GET("/:id/holdings", portfolioHandler.ListHoldings)
	portfolios.POST("/:id/holdings", portfolioHandler.AddHolding)
	portfolios.PUT("/:id/holdings/:holdingId", portfolioHandler.UpdateHolding)
	portfolios.DELETE("/:id/holdings/:holdingId", portfolioHandler.RemoveHolding)
	portfolios.GET("/:id/valuation", portfolioHandler.Valuation)
	portfolios.GET("/:id/breakdown", portfolioHandler.Breakdown)

	reference := protected.Group("/reference")
	reference.GET("/regions", referenceHandler.ListRegions)
	reference.GET("/sectors", referenceHandler.ListSectors)
	reference.GET("/categories", referenceHandler.ListCategories)
	reference.GET("/exchanges", referenceHandler.ListExchanges)

	market := protected.Group("/market")
	market.GET("/info/:symbol", marketHandler.Info)
	market.GET("/price/:symbol", marketHandler.Price)
	market.GET("/exchange-rate", marketHandler.ExchangeRate)
	market.GET("/last-trading-day", marketHandler.LastTradingDay)
	market.GET("/refresh-status", marketHandler.RefreshStatus)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/currencies", currencyHandler.Create)
	admin.DELETE("/currencies/:id", currencyHandler.Delete)
	admin.POST("/securities", securityHandler.Create)
	admin.PUT("/securities/:id", securityHandler.Update)
	admin.DELETE("/securities/:id", securityHandler.Delete)
	admin.POST("/exchanges", referenceHandler.CreateExchange)
	admin.POST("/refresh/securities", adminHandler.RefreshSecurities)
	admin.POST("/refresh/exchange-rates", adminHandler.RefreshExchangeRates)
	admin.GET("/fetch-logs", adminHandler.ListFetchLogs)
	admin.POST("/fetch-logs/:id/retry", adminHandler.RetryFetch)

	return &testApp{DB: db, Router: router, Providers: providers}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, username, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, username, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// registerAdmin registers a user, flips the admin flag in the database, and
// logs in again so the token carries the admin claim.
func (app *testApp) registerAdmin(t *testing.T, username, password string) (accessToken string) {
	t.Helper()
	_, _, userID := app.registerUser(t, username, password)
	if err := app.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote user to admin: %v", err)
	}
	token, _ := app.loginUser(t, username, password)
	return token
}

// seedCurrency inserts a currency directly and returns it.
func (app *testApp) seedCurrency(t *testing.T, code, name string) *models.Currency {
	t.Helper()
	currency := &models.Currency{Code: code, Name: name}
	if err := app.DB.Create(currency).Error; err != nil {
		t.Fatalf("failed to seed currency %s: %v", code, err)
	}
	return currency
}

// seedSecurity inserts a security directly and returns it.
func (app *testApp) seedSecurity(t *testing.T, symbol, currencyID string) *models.Security {
	t.Helper()
	security := &models.Security{Symbol: symbol, Name: symbol + " Test Security", CurrencyID: currencyID}
	if err := app.DB.Create(security).Error; err != nil {
		t.Fatalf("failed to seed security %s: %v", symbol, err)
	}
	return security
}

// seedPrice inserts a security price directly.
func (app *testApp) seedPrice(t *testing.T, securityID string, cents int64, day time.Time) {
	t.Helper()
	price := &models.SecurityPrice{SecurityID: securityID, Price: cents, Volume: 1000, TradingDay: day}
	if err := app.DB.Create(price).Error; err != nil {
		t.Fatalf("failed to seed price: %v", err)
	}
}
