package models

import "time"

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	Reference    string      `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	RestaurantID uint        `gorm:"index;not null" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TableID      uint        `gorm:"index:idx_booking_table_time;not null" json:"table_id"`
	Table        *Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	PartySize    int         `gorm:"not null" json:"party_size"`
	StartTime    time.Time   `gorm:"index:idx_booking_table_time;not null" json:"start_time"`
	EndTime      time.Time   `gorm:"not null" json:"end_time"`
	GuestName    string      `gorm:"type:varchar(100)" json:"guest_name,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}
