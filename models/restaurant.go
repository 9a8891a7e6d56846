package models

import (
	"time"
	_ "time/tzdata"

	"gorm.io/datatypes"
)

type Restaurant struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Address     string            `gorm:"type:varchar(255)" json:"address"`
	OpeningTime string            `gorm:"type:varchar(5);not null" json:"opening_time"`
	ClosingTime string            `gorm:"type:varchar(5);not null" json:"closing_time"`
	Timezone    string            `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	Tables      []Table           `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tables,omitempty"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

// Location is the restaurant's time zone; opening hours are read in it.
// Unknown or empty zones fall back to UTC.
func (r *Restaurant) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
