package models

import (
	"time"

	"bondfolio/internal/uuid"

	"gorm.io/gorm"
)

// SecurityPrice holds one end-of-day price row per security and trading day.
// This is append-mostly time-series data — no Base embed, no soft deletes.
// The daily refresh upserts in place when same-day data already exists.
type SecurityPrice struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	SecurityID string    `gorm:"type:uuid;not null;uniqueIndex:uq_security_prices_day" json:"security_id"`
	Price      int64     `gorm:"type:bigint;not null" json:"price"` // cents
	Volume     int64     `gorm:"type:bigint;not null;default:0" json:"volume"`
	TradingDay time.Time `gorm:"not null;uniqueIndex:uq_security_prices_day" json:"trading_day"`

	Security Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *SecurityPrice) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}
