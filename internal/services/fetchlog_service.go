package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
	"bondfolio/internal/pagination"
)

// MaxRetries caps admin-triggered retries per failed fetch row.
const MaxRetries = 3

// fetchLogService records provider fetch outcomes for the operational log.
type fetchLogService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewFetchLogService creates a new FetchLogServicer.
func NewFetchLogService(db *gorm.DB) FetchLogServicer {
	return &fetchLogService{db: db, now: time.Now}
}

// LogRun writes the aggregate summary row for a refresh run. The symbol
// column carries "ALL" so summary rows are distinguishable from per-symbol
// failure rows.
func (s *fetchLogService) LogRun(fetchType models.FetchType, status models.FetchStatus, message string) error {
	row := &models.FetchLog{
		Symbol:       "ALL",
		FetchType:    fetchType,
		Status:       status,
		ErrorMessage: message,
		FetchTime:    s.now().UTC(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// LogFailure writes one FAILED row for a single symbol or currency pair.
func (s *fetchLogService) LogFailure(symbol string, fetchType models.FetchType, message string) error {
	row := &models.FetchLog{
		Symbol:       symbol,
		FetchType:    fetchType,
		Status:       models.FetchStatusFailed,
		ErrorMessage: message,
		FetchTime:    s.now().UTC(),
	}
	if err := s.db.Create(row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// List returns fetch log rows newest first, optionally filtered by type
// and status.
func (s *fetchLogService) List(page pagination.PageRequest, fetchType *models.FetchType, status *models.FetchStatus) (*pagination.PageResponse[models.FetchLog], error) {
	page.Defaults()

	query := s.db.Model(&models.FetchLog{})
	if fetchType != nil {
		query = query.Where("fetch_type = ?", *fetchType)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.FetchLog
	if err := query.Order("fetch_time DESC").Scopes(pagination.Paginate(page)).Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(logs, page.Page, page.PageSize, totalItems)
	return &response, nil
}

// GetByID returns a single fetch log row.
func (s *fetchLogService) GetByID(id string) (*models.FetchLog, error) {
	var log models.FetchLog
	if err := s.db.Where("id = ?", id).First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFetchLogNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &log, nil
}

// RecordRetry bumps a failed row's retry counter, flipping it to SUCCESS
// when the retry worked. Only FAILED rows can be retried, and only while
// the counter is under the cap.
func (s *fetchLogService) RecordRetry(id string, succeeded bool) (*models.FetchLog, error) {
	log, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if log.Status != models.FetchStatusFailed {
		return nil, apperrors.ErrRetryNotFailed
	}
	if log.RetryCount >= MaxRetries {
		return nil, apperrors.ErrRetryLimitReached
	}

	updates := map[string]interface{}{
		"retry_count": log.RetryCount + 1,
		"fetch_time":  s.now().UTC(),
	}
	if succeeded {
		updates["status"] = models.FetchStatusSuccess
		updates["error_message"] = ""
	}
	if err := s.db.Model(log).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetByID(id)
}
