package models

// User represents the user model in the database
type User struct {
	Base
	Username          string  `gorm:"uniqueIndex;not null" json:"username"`
	Email             string  `json:"email,omitempty"`
	Password          string  `gorm:"not null" json:"-"`
	DefaultCurrencyID *string `gorm:"type:uuid" json:"default_currency_id,omitempty"`
	IsAdmin           bool    `gorm:"default:false" json:"is_admin"`
	IsActive          bool    `gorm:"default:true" json:"is_active"`

	DefaultCurrency *Currency   `gorm:"foreignKey:DefaultCurrencyID" json:"default_currency,omitempty"`
	Portfolios      []Portfolio `gorm:"foreignKey:UserID" json:"portfolios,omitempty"`
}
