package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"bondfolio/internal/config"
	"bondfolio/internal/database"
	"bondfolio/internal/handlers"
	"bondfolio/internal/logger"
	"bondfolio/internal/marketdata"
	"bondfolio/internal/middleware"
	"bondfolio/internal/refresh"
	"bondfolio/internal/scheduler"
	"bondfolio/internal/services"
	"bondfolio/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bondfolio/internal/docs" // Import swagger docs
)

// @title           Bondfolio API
// @version         1.0
// @description     Bondfolio is a personal portfolio tracker: users hold securities in currency-denominated portfolios, valued from daily end-of-day prices and exchange rates.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.WaitForReady(appConfig.DBReadyAttempts, appConfig.DBReadyInterval); err != nil {
		return err
	}

	// Run migrations and seed reference data
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()
	if err := database.Seed(db, appConfig.AdminUsername, appConfig.AdminPassword, appConfig.AdminEmail); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	// Initialize services
	userService := services.NewUserService(db)
	currencyService := services.NewCurrencyService(db)
	rateService := services.NewRateService(db)
	referenceService := services.NewReferenceService(db)
	securityService := services.NewSecurityService(db)
	portfolioService := services.NewPortfolioService(db, rateService)
	fetchLogService := services.NewFetchLogService(db)
	statusService := services.NewStatusService(db)

	// Initialize market-data clients
	httpClient := &http.Client{Timeout: appConfig.RequestTimeout}
	eodClient := marketdata.NewEODClient(httpClient, appConfig.MarketDataBaseURL)
	matrixClient := marketdata.NewMatrixClient(httpClient, appConfig.MarketDataBaseURL)
	calendarClient := marketdata.NewCalendarClient(httpClient, appConfig.MarketDataBaseURL)
	infoClient := marketdata.NewInfoClient(httpClient, appConfig.MarketDataBaseURL, appConfig.InfoCacheTTL)
	quoteClient := marketdata.NewQuoteClient(httpClient, appConfig.QuoteAPIBaseURL, appConfig.QuoteAPIKey,
		appConfig.QuoteRequestsPerMinute, appConfig.QuoteCooldown)

	// Refresh pipeline
	runner := refresh.NewRunner(eodClient, matrixClient, calendarClient, quoteClient,
		securityService, currencyService, rateService, fetchLogService, statusService, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, currencyService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService)
	securityHandler := handlers.NewSecurityHandler(securityService, currencyService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, currencyService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	marketHandler := handlers.NewMarketHandler(infoClient, calendarClient, quoteClient, statusService)
	adminHandler := handlers.NewAdminHandler(userService, currencyService, fetchLogService, statusService, runner)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Currency routes
	protected.GET("/currencies", currencyHandler.List)

	// Security routes
	securities := protected.Group("/securities")
	securities.GET("", securityHandler.List)
	securities.GET("/:id", securityHandler.Get)
	securities.GET("/:id/prices", securityHandler.GetPrices)

	// Portfolio routes
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

	// Reference data routes
	reference := protected.Group("/reference")
	reference.GET("/regions", referenceHandler.ListRegions)
	reference.GET("/sectors", referenceHandler.ListSectors)
	reference.GET("/categories", referenceHandler.ListCategories)
	reference.GET("/exchanges", referenceHandler.ListExchanges)

	// Market data routes
	market := protected.Group("/market")
	market.GET("/info/:symbol", marketHandler.Info)
	market.GET("/price/:symbol", marketHandler.Price)
	market.GET("/exchange-rate", marketHandler.ExchangeRate)
	market.GET("/last-trading-day", marketHandler.LastTradingDay)
	market.GET("/refresh-status", marketHandler.RefreshStatus)

	// Admin routes
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

	// Daily refresh schedule; optionally run once before serving so a fresh
	// deploy has data by the time the first request lands.
	if appConfig.RefreshOnBoot {
		runner.RunAll(context.Background())
	}
	sched := scheduler.New(log)
	if err := sched.AddDaily(appConfig.SchedulerHour, appConfig.SchedulerMinute, "market-data-refresh", func() {
		runner.RunAll(context.Background())
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	log.Infof("Starting Bondfolio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
