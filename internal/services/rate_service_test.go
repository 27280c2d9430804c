package services

import (
	"math"
	"testing"
	"time"

	"bondfolio/internal/models"
	"bondfolio/internal/testutil"
)

func TestUpsertRate(t *testing.T) {
	t.Run("insert_then_same_day_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRateService(db)
		usd := testutil.CreateTestCurrency(t, db, "USD")
		chf := testutil.CreateTestCurrency(t, db, "CHF")
		day := testutil.Day(2025, time.January, 27)

		testutil.AssertNoError(t, svc.UpsertRate(usd.ID, chf.ID, 0.91, day))
		testutil.AssertNoError(t, svc.UpsertRate(usd.ID, chf.ID, 0.92, day))

		var count int64
		db.Model(&models.ExchangeRate{}).Count(&count)
		if count != 1 {
			t.Fatalf("expected 1 rate row after same-day upsert, got %d", count)
		}

		rate, found, err := svc.LatestRate(usd.ID, chf.ID)
		testutil.AssertNoError(t, err)
		if !found {
			t.Fatal("expected rate to be found")
		}
		if rate != 0.92 {
			t.Errorf("expected updated rate 0.92, got %v", rate)
		}
	})

	t.Run("different_days_append", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRateService(db)
		usd := testutil.CreateTestCurrency(t, db, "USD")
		eur := testutil.CreateTestCurrency(t, db, "EUR")

		testutil.AssertNoError(t, svc.UpsertRate(usd.ID, eur.ID, 0.95, testutil.Day(2025, time.January, 24)))
		testutil.AssertNoError(t, svc.UpsertRate(usd.ID, eur.ID, 0.96, testutil.Day(2025, time.January, 27)))

		var count int64
		db.Model(&models.ExchangeRate{}).Count(&count)
		if count != 2 {
			t.Fatalf("expected 2 rate rows, got %d", count)
		}

		rate, _, err := svc.LatestRate(usd.ID, eur.ID)
		testutil.AssertNoError(t, err)
		if rate != 0.96 {
			t.Errorf("expected latest rate 0.96, got %v", rate)
		}
	})
}

func TestLatestRate(t *testing.T) {
	t.Run("self_pair_is_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRateService(db)
		usd := testutil.CreateTestCurrency(t, db, "USD")

		rate, found, err := svc.LatestRate(usd.ID, usd.ID)
		testutil.AssertNoError(t, err)
		if !found || rate != 1.0 {
			t.Errorf("expected self pair rate 1.0 found, got %v found=%v", rate, found)
		}
	})

	t.Run("reciprocal_fallback", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRateService(db)
		usd := testutil.CreateTestCurrency(t, db, "USD")
		chf := testutil.CreateTestCurrency(t, db, "CHF")
		testutil.CreateTestRate(t, db, usd.ID, chf.ID, 0.8, testutil.Day(2025, time.January, 27))

		rate, found, err := svc.LatestRate(chf.ID, usd.ID)
		testutil.AssertNoError(t, err)
		if !found {
			t.Fatal("expected reciprocal rate to be found")
		}
		if math.Abs(rate-1.25) > 1e-9 {
			t.Errorf("expected reciprocal rate 1.25, got %v", rate)
		}
	})

	t.Run("missing_defaults_to_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRateService(db)
		usd := testutil.CreateTestCurrency(t, db, "USD")
		jpy := testutil.CreateTestCurrency(t, db, "JPY")

		rate, found, err := svc.LatestRate(usd.ID, jpy.ID)
		testutil.AssertNoError(t, err)
		if found {
			t.Error("expected rate not to be found")
		}
		if rate != 1.0 {
			t.Errorf("expected default rate 1.0, got %v", rate)
		}
	})
}
