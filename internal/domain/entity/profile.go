package entity

import (
	"time"

	"github.com/google/uuid"
)

// RestaurantProfile is the restaurant-specific extension of an Account.
// Its donations are the donations whose RestaurantID points at it.
type RestaurantProfile struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Name        string
	Email       string
	Phone       string
	Address     string
	Description string
	Location    *GeoLocation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NGOProfile is the NGO-specific extension of an Account.
// Its requests are the donations whose RequestedBy points at it.
type NGOProfile struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Email     string
	Phone     string
	Address   string
	Location  *GeoLocation
	CreatedAt time.Time
	UpdatedAt time.Time
}
