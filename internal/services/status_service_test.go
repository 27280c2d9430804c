package services

import (
	"testing"
	"time"

	"bondfolio/internal/models"
	"bondfolio/internal/testutil"
)

func TestStatusGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)

	status, err := svc.Get()
	testutil.AssertNoError(t, err)

	if status.ID != models.RefreshStatusID {
		t.Errorf("expected singleton ID %d, got %d", models.RefreshStatusID, status.ID)
	}
	if status.SecuritiesRefreshedOn != nil || status.ExchangeRatesRefreshedOn != nil {
		t.Error("expected fresh status row with nil dates")
	}

	// A second Get must not create another row.
	_, err = svc.Get()
	testutil.AssertNoError(t, err)
	var count int64
	db.Model(&models.RefreshStatus{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 status row, got %d", count)
	}
}

func TestRefreshedToday(t *testing.T) {
	t.Run("never_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)

		fresh, err := svc.RefreshedToday(models.RefreshDomainSecurities, time.Now())
		testutil.AssertNoError(t, err)
		if fresh {
			t.Error("expected not refreshed when never run")
		}
	})

	t.Run("same_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)
		today := testutil.Day(2025, time.January, 27)

		testutil.AssertNoError(t, svc.MarkRefreshed(models.RefreshDomainSecurities, today))

		fresh, err := svc.RefreshedToday(models.RefreshDomainSecurities, today.Add(14*time.Hour))
		testutil.AssertNoError(t, err)
		if !fresh {
			t.Error("expected refreshed on the same calendar day")
		}
	})

	t.Run("previous_day_is_stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)

		testutil.AssertNoError(t, svc.MarkRefreshed(models.RefreshDomainSecurities, testutil.Day(2025, time.January, 26)))

		fresh, err := svc.RefreshedToday(models.RefreshDomainSecurities, testutil.Day(2025, time.January, 27))
		testutil.AssertNoError(t, err)
		if fresh {
			t.Error("expected stale the next day")
		}
	})

	t.Run("domains_tracked_independently", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewStatusService(db)
		today := testutil.Day(2025, time.January, 27)

		testutil.AssertNoError(t, svc.MarkRefreshed(models.RefreshDomainSecurities, today))

		ratesFresh, err := svc.RefreshedToday(models.RefreshDomainExchangeRates, today)
		testutil.AssertNoError(t, err)
		if ratesFresh {
			t.Error("expected exchange rates domain unaffected by securities refresh")
		}
	})
}

func TestStatusReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewStatusService(db)
	today := testutil.Day(2025, time.January, 27)

	testutil.AssertNoError(t, svc.MarkRefreshed(models.RefreshDomainSecurities, today))
	testutil.AssertNoError(t, svc.Reset(models.RefreshDomainSecurities))

	fresh, err := svc.RefreshedToday(models.RefreshDomainSecurities, today)
	testutil.AssertNoError(t, err)
	if fresh {
		t.Error("expected stale after reset")
	}

	status, err := svc.Get()
	testutil.AssertNoError(t, err)
	if status.SecuritiesRefreshedOn != nil {
		t.Error("expected cleared securities date after reset")
	}
}
