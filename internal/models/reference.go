package models

// Region is a static lookup used to group exchanges geographically.
type Region struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Sector is a static lookup for security sector classification.
type Sector struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Exchange represents a stock exchange, mapped to a region for breakdowns.
type Exchange struct {
	Base
	Name     string  `gorm:"uniqueIndex;not null" json:"name"`
	RegionID *string `gorm:"type:uuid" json:"region_id,omitempty"`

	Region *Region `gorm:"foreignKey:RegionID" json:"region,omitempty"`
}

// SecurityCategory classifies securities (ETF, Share, Managed Fund, ...).
type SecurityCategory struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
