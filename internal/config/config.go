package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// JWT
	JWTSecret string

	// Default admin account seeded at setup
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	// Daily refresh scheduler
	SchedulerHour   int
	SchedulerMinute int

	// Boot-time behavior
	RefreshOnBoot   bool
	DBReadyAttempts int
	DBReadyInterval time.Duration

	// Market-data providers
	MarketDataBaseURL string
	QuoteAPIBaseURL   string
	QuoteAPIKey       string
	RequestTimeout    time.Duration

	// Quote API rate budget (sliding 60s window)
	QuoteRequestsPerMinute int
	QuoteCooldown          time.Duration

	// Ticker metadata cache
	InfoCacheTTL time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),

		MarketDataBaseURL: getEnv("MARKET_DATA_BASE_URL", "https://query1.finance.yahoo.com"),
		QuoteAPIBaseURL:   getEnv("QUOTE_API_BASE_URL", "https://api.twelvedata.com"),
		QuoteAPIKey:       getEnv("QUOTE_API_KEY", ""),
	}

	hour, err := getEnvInt("SCHEDULER_HOUR", 6)
	if err != nil {
		return nil, err
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("SCHEDULER_HOUR must be between 0 and 23, got %d", hour)
	}
	config.SchedulerHour = hour

	minute, err := getEnvInt("SCHEDULER_MINUTE", 0)
	if err != nil {
		return nil, err
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("SCHEDULER_MINUTE must be between 0 and 59, got %d", minute)
	}
	config.SchedulerMinute = minute

	config.RefreshOnBoot = getEnv("REFRESH_ON_BOOT", "true") == "true"

	attempts, err := getEnvInt("DB_READY_ATTEMPTS", 10)
	if err != nil {
		return nil, err
	}
	config.DBReadyAttempts = attempts

	config.DBReadyInterval, err = getEnvDuration("DB_READY_INTERVAL", 3*time.Second)
	if err != nil {
		return nil, err
	}

	config.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	perMinute, err := getEnvInt("QUOTE_REQUESTS_PER_MINUTE", 8)
	if err != nil {
		return nil, err
	}
	if perMinute < 1 {
		return nil, fmt.Errorf("QUOTE_REQUESTS_PER_MINUTE must be positive, got %d", perMinute)
	}
	config.QuoteRequestsPerMinute = perMinute

	config.QuoteCooldown, err = getEnvDuration("QUOTE_COOLDOWN", 60*time.Second)
	if err != nil {
		return nil, err
	}

	config.InfoCacheTTL, err = getEnvDuration("INFO_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}
