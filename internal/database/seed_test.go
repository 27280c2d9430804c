package database

import (
	"testing"

	"bondfolio/internal/models"
	"bondfolio/internal/testutil"
)

func TestSeed(t *testing.T) {
	t.Run("inserts reference data and admin account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		testutil.AssertNoError(t, Seed(db, "admin", "admin", "admin@localhost"))

		var currencies int64
		db.Model(&models.Currency{}).Count(&currencies)
		if currencies != int64(len(defaultCurrencies)) {
			t.Errorf("expected %d currencies, got %d", len(defaultCurrencies), currencies)
		}

		var sectors int64
		db.Model(&models.Sector{}).Count(&sectors)
		if sectors != int64(len(defaultSectors)) {
			t.Errorf("expected %d sectors, got %d", len(defaultSectors), sectors)
		}

		var admin models.User
		if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
			t.Fatalf("expected seeded admin user: %v", err)
		}
		if !admin.IsAdmin {
			t.Error("expected admin account to have is_admin set")
		}

		var status models.RefreshStatus
		if err := db.First(&status, models.RefreshStatusID).Error; err != nil {
			t.Fatalf("expected status singleton row: %v", err)
		}
	})

	t.Run("is idempotent across repeated runs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		testutil.AssertNoError(t, Seed(db, "admin", "admin", "admin@localhost"))
		testutil.AssertNoError(t, Seed(db, "admin", "changed", "admin@localhost"))

		var currencies int64
		db.Model(&models.Currency{}).Count(&currencies)
		if currencies != int64(len(defaultCurrencies)) {
			t.Errorf("expected %d currencies after reseed, got %d", len(defaultCurrencies), currencies)
		}

		var admins int64
		db.Model(&models.User{}).Where("username = ?", "admin").Count(&admins)
		if admins != 1 {
			t.Errorf("expected a single admin account, got %d", admins)
		}

		var exchanges int64
		db.Model(&models.Exchange{}).Count(&exchanges)
		if exchanges != int64(len(defaultExchanges)) {
			t.Errorf("expected %d exchanges after reseed, got %d", len(defaultExchanges), exchanges)
		}
	})
}
