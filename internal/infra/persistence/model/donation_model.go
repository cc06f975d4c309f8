package model

import (
	"time"

	"github.com/google/uuid"
)

// DonationModel mirrors the 'donations' table.
// The composite index serves the expiry sweep and the available listing.
type DonationModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RestaurantID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	RestaurantAccountID uuid.UUID  `gorm:"type:uuid;not null"`
	FoodType            string     `gorm:"type:varchar(255);not null"`
	Quantity            string     `gorm:"type:varchar(255);not null"`
	ExpiryTime          time.Time  `gorm:"not null;index:idx_donations_status_expiry,priority:2"`
	PickupLocation      string     `gorm:"type:text;not null"`
	PreferredOption     string     `gorm:"type:varchar(50);not null"`
	Status              string     `gorm:"type:varchar(20);not null;index:idx_donations_status_expiry,priority:1"`
	RequestedBy         *uuid.UUID `gorm:"type:uuid;index"`
	RequestedByAccount  *uuid.UUID `gorm:"type:uuid"`
	RequestedAt         *time.Time
	AcceptedAt          *time.Time
	CompletedAt         *time.Time
	Rating              *int
	Review              *string `gorm:"type:text"`
	RatedAt             *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName explicitly sets the table name for GORM.
func (DonationModel) TableName() string {
	return "donations"
}
