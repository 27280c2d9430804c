package models

import (
	"time"

	"bondfolio/internal/uuid"

	"gorm.io/gorm"
)

// FetchType distinguishes security-price fetches from exchange-rate fetches.
type FetchType string

const (
	FetchTypeSecurity FetchType = "SECURITY"
	FetchTypeExchange FetchType = "EXCHANGE"
)

// FetchStatus is the outcome recorded for a fetch attempt or run summary.
type FetchStatus string

const (
	FetchStatusSuccess FetchStatus = "SUCCESS"
	FetchStatusPartial FetchStatus = "PARTIAL"
	FetchStatusFailed  FetchStatus = "FAILED"
)

// FetchLog records provider fetch attempts for the operational log. A refresh
// run writes one aggregate row plus one row per individual failure; failed
// rows can be retried by an admin up to the retry cap.
type FetchLog struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol       string      `gorm:"not null;index" json:"symbol"`
	FetchType    FetchType   `gorm:"not null" json:"fetch_type"`
	Status       FetchStatus `gorm:"not null" json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	RetryCount   int         `gorm:"default:0" json:"retry_count"`
	FetchTime    time.Time   `gorm:"not null" json:"fetch_time"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (f *FetchLog) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New()
	}
	return nil
}
