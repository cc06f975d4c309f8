package model

import (
	"time"

	"github.com/google/uuid"
)

// RestaurantProfileModel mirrors the 'restaurant_profiles' table. AccountID references accounts.id
// and is unique, so a profile insert can be an upsert keyed on it.
type RestaurantProfileModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(100);not null"`
	Email       string    `gorm:"type:varchar(255);not null"`
	Phone       string    `gorm:"type:varchar(32)"`
	Address     string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	Latitude    *float64
	Longitude   *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (RestaurantProfileModel) TableName() string {
	return "restaurant_profiles"
}

// NGOProfileModel mirrors the 'ngo_profiles' table. AccountID references accounts.id and is unique.
type NGOProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Phone     string    `gorm:"type:varchar(32)"`
	Address   string    `gorm:"type:text"`
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (NGOProfileModel) TableName() string {
	return "ngo_profiles"
}
