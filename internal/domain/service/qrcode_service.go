package service

import (
	"github.com/google/uuid"
)

// PickupPass is the content of a pickup QR code handed over at collection time.
type PickupPass struct {
	DonationID      uuid.UUID `json:"donation_id"`
	RestaurantID    uuid.UUID `json:"restaurant_id"`
	NGOID           uuid.UUID `json:"ngo_id"`
	PickupLocation  string    `json:"pickup_location"`
	PreferredOption string    `json:"preferred_option"`
}

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GeneratePickupQR renders the pass as a PNG QR code
	GeneratePickupQR(pass *PickupPass) ([]byte, error)

	// ParsePickupQR parses QR code data back into a pass
	ParsePickupQR(qrData string) (*PickupPass, error)
}
