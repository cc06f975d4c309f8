package usecase

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateDonationInput defines the offer a restaurant publishes.
type CreateDonationInput struct {
	FoodType        string
	Quantity        string
	ExpiryTime      time.Time
	PickupLocation  string
	PreferredOption entity.PreferredOption
}

// AvailableQuery narrows the available listing. A nil MaxDistanceKm does not filter.
type AvailableQuery struct {
	MaxDistanceKm *float64
}

// RateInput is the NGO's feedback on a completed donation.
type RateInput struct {
	Rating int
	Review string
}

// --- Output DTOs ---

// DonationDetail is a donation with its counterpart profiles resolved.
type DonationDetail struct {
	Donation   *entity.Donation
	Restaurant *entity.RestaurantProfile
	Requester  *entity.NGOProfile
	// DistanceKm is set when both the viewer and the restaurant have coordinates.
	DistanceKm *float64
}

// RestaurantStats summarizes a restaurant's donation history.
type RestaurantStats struct {
	TotalDonations       int `json:"totalDonations"`
	CompletedDonations   int `json:"completedDonations"`
	PendingDonations     int `json:"pendingDonations"`
	AvailableDonations   int `json:"availableDonations"`
	ExpiredDonations     int `json:"expiredDonations"`
	TotalQuantityDonated int `json:"totalQuantityDonated"`
}

// NGOStats summarizes an NGO's request history.
type NGOStats struct {
	TotalRequests         int `json:"totalRequests"`
	AcceptedRequests      int `json:"acceptedRequests"`
	CompletedRequests     int `json:"completedRequests"`
	PendingRequests       int `json:"pendingRequests"`
	ExpiredRequests       int `json:"expiredRequests"`
	TotalQuantityReceived int `json:"totalQuantityReceived"`
}

// RestaurantHistory is every donation a restaurant has offered, newest first.
type RestaurantHistory struct {
	Profile   *entity.RestaurantProfile
	Donations []*DonationDetail
	Stats     RestaurantStats
}

// NGOHistory is every donation an NGO currently holds a request on, most recent request first.
type NGOHistory struct {
	Profile   *entity.NGOProfile
	Donations []*DonationDetail
	Stats     NGOStats
}

// Review is the anonymous feedback left on one donation.
type Review struct {
	Rating   int       `json:"rating"`
	Review   string    `json:"review"`
	RatedAt  time.Time `json:"ratedAt"`
	FoodType string    `json:"foodType"`
	Quantity string    `json:"quantity"`
}

// ReviewStats aggregates a restaurant's ratings. AverageRating is rounded to one decimal.
type ReviewStats struct {
	TotalReviews  int     `json:"totalReviews"`
	AverageRating float64 `json:"averageRating"`
}

// ReviewSummary lists a restaurant's reviews, most recently rated first.
type ReviewSummary struct {
	Reviews []*Review
	Stats   ReviewStats
}

// DonationParticipant holds the operations open to both sides of a donation.
type DonationParticipant interface {
	// Complete moves an Accepted donation the caller takes part in to Completed.
	Complete(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error)

	// PickupQR renders the pickup pass of an Accepted donation as a PNG.
	PickupQR(ctx context.Context, donationID uuid.UUID) ([]byte, error)
}

// RestaurantDonations is the capability set of a restaurant actor.
type RestaurantDonations interface {
	DonationParticipant

	Create(ctx context.Context, input *CreateDonationInput) (*entity.Donation, error)
	PendingRequests(ctx context.Context) ([]*DonationDetail, error)
	Accept(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error)
	Reject(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error)
	History(ctx context.Context) (*RestaurantHistory, error)
}

// NGODonations is the capability set of an NGO actor.
type NGODonations interface {
	DonationParticipant

	Available(ctx context.Context, query AvailableQuery) ([]*DonationDetail, error)
	Request(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error)
	MyRequests(ctx context.Context) ([]*DonationDetail, error)
	Rate(ctx context.Context, donationID uuid.UUID, input *RateInput) (*entity.Donation, error)
	History(ctx context.Context) (*NGOHistory, error)
}

// DonationUsecase hands out the capability set matching an actor's role.
type DonationUsecase interface {
	AsRestaurant(actor entity.RestaurantActor) RestaurantDonations
	AsNGO(actor entity.NGOActor) NGODonations
	// AsParticipant returns the shared capabilities of either variant.
	AsParticipant(actor entity.Actor) (DonationParticipant, error)

	// Reviews aggregates the ratings left on a restaurant profile's completed donations.
	Reviews(ctx context.Context, restaurantID uuid.UUID) (*ReviewSummary, error)
}
