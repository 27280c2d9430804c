package database

import (
	"fmt"
	"time"

	"bondfolio/internal/logger"
	"bondfolio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// defaultCurrencies are seeded once at setup.
var defaultCurrencies = []models.Currency{
	{Code: "USD", Name: "US Dollar"},
	{Code: "EUR", Name: "Euro"},
	{Code: "CHF", Name: "Swiss Franc"},
	{Code: "GBP", Name: "British Pound"},
	{Code: "JPY", Name: "Japanese Yen"},
	{Code: "AUD", Name: "Australian Dollar"},
	{Code: "CAD", Name: "Canadian Dollar"},
}

var defaultRegions = []string{"North America", "Europe", "Asia-Pacific", "Other"}

var defaultSectors = []string{
	"Technology", "Financial Services", "Healthcare", "Consumer Cyclical",
	"Industrials", "Energy", "Utilities", "Real Estate", "Basic Materials",
	"Communication Services", "Consumer Defensive",
}

var defaultCategories = []string{"Share", "ETF", "Managed Fund", "Bond", "Other"}

// defaultExchanges maps exchange names to their region.
var defaultExchanges = map[string]string{
	"NYSE":     "North America",
	"NASDAQ":   "North America",
	"TSX":      "North America",
	"LSE":      "Europe",
	"XETRA":    "Europe",
	"SIX":      "Europe",
	"EURONEXT": "Europe",
	"JPX":      "Asia-Pacific",
	"HKEX":     "Asia-Pacific",
	"ASX":      "Asia-Pacific",
}

// Seed inserts static reference data, the status singleton, and the default
// admin account. Every step is idempotent so Seed can run on each boot.
func Seed(db *gorm.DB, adminUsername, adminPassword, adminEmail string) error {
	for _, c := range defaultCurrencies {
		currency := c
		if err := db.Where("code = ?", currency.Code).FirstOrCreate(&currency).Error; err != nil {
			return fmt.Errorf("seeding currency %s: %w", c.Code, err)
		}
	}

	regionIDs := make(map[string]string, len(defaultRegions))
	for _, name := range defaultRegions {
		region := models.Region{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&region).Error; err != nil {
			return fmt.Errorf("seeding region %s: %w", name, err)
		}
		regionIDs[name] = region.ID
	}

	for _, name := range defaultSectors {
		sector := models.Sector{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&sector).Error; err != nil {
			return fmt.Errorf("seeding sector %s: %w", name, err)
		}
	}

	for _, name := range defaultCategories {
		category := models.SecurityCategory{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seeding category %s: %w", name, err)
		}
	}

	for name, regionName := range defaultExchanges {
		regionID := regionIDs[regionName]
		exchange := models.Exchange{Name: name, RegionID: &regionID}
		if err := db.Where("name = ?", name).FirstOrCreate(&exchange).Error; err != nil {
			return fmt.Errorf("seeding exchange %s: %w", name, err)
		}
	}

	status := models.RefreshStatus{ID: models.RefreshStatusID, GeneratedAt: time.Now().UTC()}
	if err := db.Where("id = ?", models.RefreshStatusID).FirstOrCreate(&status).Error; err != nil {
		return fmt.Errorf("seeding refresh status: %w", err)
	}

	if err := seedAdminUser(db, adminUsername, adminPassword, adminEmail); err != nil {
		return err
	}

	logger.Get().Info("Reference data seeding completed")
	return nil
}

func seedAdminUser(db *gorm.DB, username, password, email string) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("checking admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsAdmin:  true,
		IsActive: true,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	logger.Get().Infof("Default admin user %q created", username)
	return nil
}
