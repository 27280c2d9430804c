package models

// Security represents a tracked financial instrument. Rows are created by
// admin action or setup seeding; the symbol is what the daily price refresh
// sends to the market-data provider.
type Security struct {
	Base
	Symbol      string  `gorm:"uniqueIndex;not null" json:"symbol"`
	Name        string  `gorm:"not null" json:"name"`
	CategoryID  *string `gorm:"type:uuid" json:"category_id,omitempty"`
	CurrencyID  string  `gorm:"type:uuid;not null" json:"currency_id"`
	ExchangeID  *string `gorm:"type:uuid" json:"exchange_id,omitempty"`
	SectorID    *string `gorm:"type:uuid" json:"sector_id,omitempty"`
	Country     string  `json:"country,omitempty"`
	Website     string  `json:"website,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Description string  `json:"description,omitempty"`

	// Relationships
	Category *SecurityCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Currency Currency          `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Exchange *Exchange         `gorm:"foreignKey:ExchangeID" json:"exchange,omitempty"`
	Sector   *Sector           `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
}
