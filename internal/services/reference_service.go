package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "bondfolio/internal/errors"
	"bondfolio/internal/models"
)

// referenceService serves the static lookup tables.
type referenceService struct {
	db *gorm.DB
}

// NewReferenceService creates a new ReferenceServicer.
func NewReferenceService(db *gorm.DB) ReferenceServicer {
	return &referenceService{db: db}
}

func (s *referenceService) ListRegions() ([]models.Region, error) {
	var regions []models.Region
	if err := s.db.Order("name ASC").Find(&regions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return regions, nil
}

func (s *referenceService) ListSectors() ([]models.Sector, error) {
	var sectors []models.Sector
	if err := s.db.Order("name ASC").Find(&sectors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sectors, nil
}

func (s *referenceService) ListCategories() ([]models.SecurityCategory, error) {
	var categories []models.SecurityCategory
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

func (s *referenceService) ListExchanges() ([]models.Exchange, error) {
	var exchanges []models.Exchange
	if err := s.db.Preload("Region").Order("name ASC").Find(&exchanges).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return exchanges, nil
}

// CreateExchange creates an exchange row, optionally mapped to a region.
func (s *referenceService) CreateExchange(name string, regionID *string) (*models.Exchange, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Exchange name is required")
	}
	exchange := &models.Exchange{Name: name, RegionID: regionID}
	if err := s.db.Create(exchange).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateExchange
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return exchange, nil
}

func (s *referenceService) GetSectorByName(name string) (*models.Sector, error) {
	var sector models.Sector
	if err := s.db.Where("name = ?", name).First(&sector).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sector, nil
}

func (s *referenceService) GetCategoryByName(name string) (*models.SecurityCategory, error) {
	var category models.SecurityCategory
	if err := s.db.Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *referenceService) GetExchangeByName(name string) (*models.Exchange, error) {
	var exchange models.Exchange
	if err := s.db.Where("name = ?", name).First(&exchange).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExchangeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &exchange, nil
}
