package repository

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrProfileNotFound is returned when a restaurant or NGO profile is not found.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository stores the role-specific extensions of accounts.
// GetOrCreate calls are upserts keyed on the owning account, so concurrent
// first use yields a single profile.
type ProfileRepository interface {
	// GetOrCreateRestaurant returns the account's restaurant profile, creating a minimal one if absent.
	GetOrCreateRestaurant(ctx context.Context, account *entity.Account) (profile *entity.RestaurantProfile, created bool, err error)

	// GetOrCreateNGO returns the account's NGO profile, creating a minimal one if absent.
	GetOrCreateNGO(ctx context.Context, account *entity.Account) (profile *entity.NGOProfile, created bool, err error)

	// FindRestaurantByID retrieves a restaurant profile by its ID.
	FindRestaurantByID(ctx context.Context, id uuid.UUID) (*entity.RestaurantProfile, error)

	// FindRestaurantsByIDs retrieves restaurant profiles keyed by ID. Unknown IDs are skipped.
	FindRestaurantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.RestaurantProfile, error)

	// FindNGOsByIDs retrieves NGO profiles keyed by ID. Unknown IDs are skipped.
	FindNGOsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.NGOProfile, error)

	// ListRestaurants lists restaurant profiles by name, optionally only those with coordinates.
	ListRestaurants(ctx context.Context, withCoordinatesOnly bool) ([]*entity.RestaurantProfile, error)

	// ListNGOs lists NGO profiles by name.
	ListNGOs(ctx context.Context) ([]*entity.NGOProfile, error)

	// UpdateContact copies location and phone onto whichever profile the account owns.
	UpdateContact(ctx context.Context, accountID uuid.UUID, role entity.Role, location *entity.GeoLocation, phone string) error
}
