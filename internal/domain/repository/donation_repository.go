package repository

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrDonationNotFound is returned when a donation is not found.
var ErrDonationNotFound = errors.New("donation not found")

// DonationOrder selects the sort order of a donation listing.
type DonationOrder int

const (
	// OrderByExpiryAsc lists the soonest expiring donations first.
	OrderByExpiryAsc DonationOrder = iota
	// OrderByCreatedDesc lists the newest donations first.
	OrderByCreatedDesc
	// OrderByRequestedDesc lists the most recently requested donations first.
	OrderByRequestedDesc
	// OrderByRatedDesc lists the most recently rated donations first.
	OrderByRatedDesc
)

// DonationFilter narrows listings and sweeps. Zero fields do not filter.
type DonationFilter struct {
	Statuses     []entity.DonationStatus
	RestaurantID *uuid.UUID
	RequestedBy  *uuid.UUID
	ExpiresAfter *time.Time
	RatedOnly    bool
	Order        DonationOrder
}

// DonationOwner names the profile a conditional transition must belong to.
// Side picks the column: the restaurant that offers it or the NGO that requested it.
type DonationOwner struct {
	Side      entity.Role
	ProfileID uuid.UUID
}

// DonationRepository owns donation rows. Every Mark* method is a single
// conditional update guarded on the expected prior status and owner; it
// reports false when no row matched, leaving the row untouched.
type DonationRepository interface {
	// CreateDonation persists a new donation.
	CreateDonation(ctx context.Context, donation *entity.Donation) error

	// FindDonationByID retrieves a donation from the primary.
	FindDonationByID(ctx context.Context, id uuid.UUID) (*entity.Donation, error)

	// ListDonations lists donations matching the filter.
	ListDonations(ctx context.Context, filter DonationFilter) ([]*entity.Donation, error)

	// ExpireStale moves every donation matching the filter whose expiry is at or before now to Expired.
	ExpireStale(ctx context.Context, filter DonationFilter, now time.Time) (int64, error)

	// MarkRequested moves an unexpired Available donation to Requested by the NGO.
	MarkRequested(ctx context.Context, id, ngoProfileID, ngoAccountID uuid.UUID, now time.Time) (bool, error)

	// MarkAccepted moves a Requested donation owned by the restaurant to Accepted.
	MarkAccepted(ctx context.Context, id, restaurantID uuid.UUID, now time.Time) (bool, error)

	// MarkRejected moves a Requested donation owned by the restaurant back to Available, clearing the requester.
	MarkRejected(ctx context.Context, id, restaurantID uuid.UUID) (bool, error)

	// MarkCompleted moves an Accepted donation belonging to the owner to Completed.
	MarkCompleted(ctx context.Context, id uuid.UUID, owner DonationOwner, now time.Time) (bool, error)

	// SetRating stores rating, review and ratedAt on a Completed donation requested by the NGO.
	SetRating(ctx context.Context, id, ngoProfileID uuid.UUID, rating int, review string, now time.Time) (bool, error)
}
