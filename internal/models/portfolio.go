package models

// Portfolio is a user-owned collection of security holdings valued in a
// single currency. Deleting a portfolio cascades to its holdings.
type Portfolio struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	CurrencyID  string `gorm:"type:uuid;not null" json:"currency_id"`

	// Relationships
	Currency Currency           `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Holdings []PortfolioHolding `gorm:"foreignKey:PortfolioID;constraint:OnDelete:CASCADE" json:"holdings,omitempty"`
}

// PortfolioHolding is the join row between a portfolio and a security,
// unique per (portfolio, security).
type PortfolioHolding struct {
	Base
	PortfolioID string  `gorm:"type:uuid;not null;uniqueIndex:uq_portfolio_security" json:"portfolio_id"`
	SecurityID  string  `gorm:"type:uuid;not null;uniqueIndex:uq_portfolio_security" json:"security_id"`
	Quantity    float64 `gorm:"not null" json:"quantity"`

	Security Security `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}
