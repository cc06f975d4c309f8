package postgres

import (
	"context"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T {
	return &v
}

func seedAccount(t *testing.T, db *gorm.DB, email string, role entity.Role) *entity.Account {
	t.Helper()

	account := &entity.Account{
		Name:         "Account " + email,
		Email:        email,
		Phone:        "555-0100",
		PasswordHash: "hash",
		Role:         role,
		Location: &entity.GeoLocation{
			Latitude:  ptr(25.03),
			Longitude: ptr(121.56),
			Address:   "1 Main St",
		},
	}
	require.NoError(t, NewAccountRepository(db).CreateAccount(context.Background(), account))

	return account
}

func seedRestaurant(t *testing.T, db *gorm.DB, email string) *entity.RestaurantProfile {
	t.Helper()

	account := seedAccount(t, db, email, entity.RoleRestaurant)
	profile, _, err := NewProfileRepository(db).GetOrCreateRestaurant(context.Background(), account)
	require.NoError(t, err)

	return profile
}

func seedNGO(t *testing.T, db *gorm.DB, email string) *entity.NGOProfile {
	t.Helper()

	account := seedAccount(t, db, email, entity.RoleNGO)
	profile, _, err := NewProfileRepository(db).GetOrCreateNGO(context.Background(), account)
	require.NoError(t, err)

	return profile
}

func seedDonation(t *testing.T, db *gorm.DB, restaurant *entity.RestaurantProfile, expiry time.Time, status entity.DonationStatus) *entity.Donation {
	t.Helper()

	donation := &entity.Donation{
		RestaurantID:        restaurant.ID,
		RestaurantAccountID: restaurant.AccountID,
		FoodType:            "Rice",
		Quantity:            "10kg",
		ExpiryTime:          expiry.UTC(),
		PickupLocation:      "Back door",
		PreferredOption:     entity.OptionNGOPickup,
		Status:              status,
	}
	require.NoError(t, NewDonationRepository(db).CreateDonation(context.Background(), donation))

	return donation
}
