package models

import "time"

type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"index;not null" json:"restaurant_id"`
	Name         string    `gorm:"type:varchar(50);not null" json:"name"`
	Capacity     int       `gorm:"not null" json:"capacity"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
