package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
)

// statusService manages the single-row refresh status table.
type statusService struct {
	db *gorm.DB
}

// NewStatusService creates a new StatusServicer.
func NewStatusService(db *gorm.DB) StatusServicer {
	return &statusService{db: db}
}

// Get returns the singleton status row, creating it when it does not exist
// yet so callers never see a missing row.
func (s *statusService) Get() (*models.RefreshStatus, error) {
	var status models.RefreshStatus
	err := s.db.Where("id = ?", models.RefreshStatusID).First(&status).Error
	if err == nil {
		return &status, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	status = models.RefreshStatus{ID: models.RefreshStatusID, GeneratedAt: time.Now().UTC()}
	if err := s.db.Create(&status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &status, nil
}

// RefreshedToday reports whether the domain's stored date falls on the same
// calendar day as today. A nil stored date means the job has never run.
func (s *statusService) RefreshedToday(domain models.RefreshDomain, today time.Time) (bool, error) {
	status, err := s.Get()
	if err != nil {
		return false, err
	}

	stored := s.dateFor(status, domain)
	if stored == nil {
		return false, nil
	}

	y1, m1, d1 := stored.UTC().Date()
	y2, m2, d2 := today.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2, nil
}

// MarkRefreshed records the date a refresh job completed for its domain.
func (s *statusService) MarkRefreshed(domain models.RefreshDomain, date time.Time) error {
	if _, err := s.Get(); err != nil {
		return err
	}

	day := truncateToDay(date)
	updates := map[string]interface{}{"generated_at": time.Now().UTC()}
	switch domain {
	case models.RefreshDomainSecurities:
		updates["securities_refreshed_on"] = day
	case models.RefreshDomainExchangeRates:
		updates["exchange_rates_refreshed_on"] = day
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown refresh domain")
	}

	err := s.db.Model(&models.RefreshStatus{}).Where("id = ?", models.RefreshStatusID).Updates(updates).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Reset clears the domain's stored date so the next run treats the data as
// stale. Used by admin force-refresh.
func (s *statusService) Reset(domain models.RefreshDomain) error {
	if _, err := s.Get(); err != nil {
		return err
	}

	updates := map[string]interface{}{"generated_at": time.Now().UTC()}
	switch domain {
	case models.RefreshDomainSecurities:
		updates["securities_refreshed_on"] = nil
	case models.RefreshDomainExchangeRates:
		updates["exchange_rates_refreshed_on"] = nil
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown refresh domain")
	}

	err := s.db.Model(&models.RefreshStatus{}).Where("id = ?", models.RefreshStatusID).Updates(updates).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *statusService) dateFor(status *models.RefreshStatus, domain models.RefreshDomain) *time.Time {
	switch domain {
	case models.RefreshDomainSecurities:
		return status.SecuritiesRefreshedOn
	case models.RefreshDomainExchangeRates:
		return status.ExchangeRatesRefreshedOn
	}
	return nil
}
