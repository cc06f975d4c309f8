package entity

import (
	"time"

	"foodbridge/internal/util"

	"github.com/google/uuid"
)

// DonationStatus is a state of the donation lifecycle.
type DonationStatus string

const (
	// DonationAvailable is an open offer.
	DonationAvailable DonationStatus = "Available"
	// DonationRequested means one NGO has claimed the offer and awaits the restaurant's answer.
	DonationRequested DonationStatus = "Requested"
	// DonationAccepted means the restaurant agreed to hand the food to the requesting NGO.
	DonationAccepted DonationStatus = "Accepted"
	// DonationCompleted is absorbing; only the rating may still change.
	DonationCompleted DonationStatus = "Completed"
	// DonationExpired is absorbing.
	DonationExpired DonationStatus = "Expired"
)

// ExpirableStatuses are the states the lazy sweep may move to Expired.
var ExpirableStatuses = []DonationStatus{DonationAvailable, DonationRequested}

// IsValid checks if the status is one of the lifecycle states.
func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationAvailable, DonationRequested, DonationAccepted, DonationCompleted, DonationExpired:
		return true
	default:
		return false
	}
}

// PreferredOption is how the food changes hands.
type PreferredOption string

const (
	// OptionNGOPickup means the NGO collects the food.
	OptionNGOPickup PreferredOption = "NGO Pickup"
	// OptionRestaurantDelivery means the restaurant delivers the food.
	OptionRestaurantDelivery PreferredOption = "Restaurant Delivery"
)

// IsValid checks if the option is known.
func (o PreferredOption) IsValid() bool {
	return o == OptionNGOPickup || o == OptionRestaurantDelivery
}

// Donation is an offered quantity of food moving from offer to completion.
// RequestedBy, RequestedByAccount and RequestedAt are set or cleared together,
// and so are Rating, Review and RatedAt.
type Donation struct {
	ID                  uuid.UUID       `json:"id"`
	RestaurantID        uuid.UUID       `json:"restaurant"`
	RestaurantAccountID uuid.UUID       `json:"restaurantUser"`
	FoodType            string          `json:"foodType"`
	Quantity            string          `json:"quantity"`
	ExpiryTime          time.Time       `json:"expiryTime"`
	PickupLocation      string          `json:"pickupLocation"`
	PreferredOption     PreferredOption `json:"preferredOption"`
	Status              DonationStatus  `json:"status"`
	RequestedBy         *uuid.UUID      `json:"requestedBy"`
	RequestedByAccount  *uuid.UUID      `json:"requestedByUser"`
	RequestedAt         *time.Time      `json:"requestedAt"`
	AcceptedAt          *time.Time      `json:"acceptedAt"`
	CompletedAt         *time.Time      `json:"completedAt"`
	Rating              *int            `json:"rating"`
	Review              *string         `json:"review"`
	RatedAt             *time.Time      `json:"ratedAt"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// IsExpiredAt reports whether the donation's expiry has passed at now.
func (d *Donation) IsExpiredAt(now time.Time) bool {
	return !now.Before(d.ExpiryTime)
}

// QuantityAmount extracts the numeric magnitude from the free-text quantity.
func (d *Donation) QuantityAmount() int {
	return util.FirstInt(d.Quantity)
}

// IsRated reports whether a rating has been submitted.
func (d *Donation) IsRated() bool {
	return d.Rating != nil
}
