package models

// Currency represents an ISO 4217 currency tracked by the system.
// Securities, portfolios, and exchange rates all reference a currency row.
type Currency struct {
	Base
	Code string `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Name string `gorm:"not null" json:"name"`
}
