package models

import (
	"clubdesk/src/types"

	"gorm.io/datatypes"
)

type Sector struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string `json:"description,omitempty"`
	Capacity    uint    `json:"capacity"`
	Active      bool    `gorm:"not null" json:"active"`

	Tables []VenueTable `gorm:"foreignKey:sector_id" json:"tables,omitempty"`

	types.Timestamps
}

type VenueTable struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	SectorID uint    `gorm:"index;not null" json:"sector_id"`
	Name     string  `gorm:"not null" json:"name"`
	Capacity uint    `json:"capacity"`
	MinSpend float64 `json:"min_spend"`
	Active   bool    `gorm:"not null" json:"active"`

	Sector *Sector `gorm:"foreignKey:sector_id" json:"sector,omitempty"`

	types.Timestamps
}

func (VenueTable) TableName() string {
	return "venue_tables"
}

type Package struct {
	ID          uint                        `gorm:"primarykey" json:"id"`
	Name        string                      `gorm:"not null" json:"name"`
	Description *string                     `json:"description,omitempty"`
	Price       float64                     `json:"price"`
	Currency    string                      `gorm:"type:varchar(3);not null" json:"currency"`
	Includes    datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"includes,omitempty"`
	Active      bool                        `gorm:"not null" json:"active"`

	types.Timestamps
}
