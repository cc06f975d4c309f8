package postgres

import (
	"context"
	"sync"
	"testing"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"
	"foodbridge/internal/infra/persistence/sqlitetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_GetOrCreateIsIdempotent(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	account := seedAccount(t, db, "kitchen@example.org", entity.RoleRestaurant)

	first, created, err := repo.GetOrCreateRestaurant(ctx, account)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, account.Name, first.Name)
	assert.Equal(t, account.Email, first.Email)
	assert.Equal(t, "1 Main St", first.Address)

	second, created, err := repo.GetOrCreateRestaurant(ctx, account)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestProfileRepository_ConcurrentGetOrCreateYieldsOneProfile(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	account := seedAccount(t, db, "shelter@example.org", entity.RoleNGO)

	const callers = 8
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile, _, err := repo.GetOrCreateNGO(ctx, account)
			assert.NoError(t, err)
			if profile != nil {
				ids[i] = profile.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var count int64
	require.NoError(t, db.Model(&model.NGOProfileModel{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileRepository_FindByIDs(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	restaurant := seedRestaurant(t, db, "r@example.org")
	ngo := seedNGO(t, db, "n@example.org")

	found, err := repo.FindRestaurantByID(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, restaurant.AccountID, found.AccountID)

	_, err = repo.FindRestaurantByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrProfileNotFound)

	restaurants, err := repo.FindRestaurantsByIDs(ctx, []uuid.UUID{restaurant.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, restaurants, 1)
	assert.Contains(t, restaurants, restaurant.ID)

	ngos, err := repo.FindNGOsByIDs(ctx, []uuid.UUID{ngo.ID})
	require.NoError(t, err)
	assert.Equal(t, "n@example.org", ngos[ngo.ID].Email)

	empty, err := repo.FindNGOsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProfileRepository_UpdateContact(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	ngo := seedNGO(t, db, "n@example.org")

	loc := &entity.GeoLocation{Latitude: ptr(10.0), Longitude: ptr(20.0), Address: "Dock 4"}
	require.NoError(t, repo.UpdateContact(ctx, ngo.AccountID, entity.RoleNGO, loc, "555-0000"))

	ngos, err := repo.FindNGOsByIDs(ctx, []uuid.UUID{ngo.ID})
	require.NoError(t, err)
	updated := ngos[ngo.ID]
	assert.Equal(t, "Dock 4", updated.Address)
	assert.Equal(t, "555-0000", updated.Phone)
	assert.InDelta(t, 20.0, *updated.Location.Longitude, 1e-9)

	// No profile yet for this account; nothing to update.
	assert.NoError(t, repo.UpdateContact(ctx, uuid.New(), entity.RoleRestaurant, loc, ""))
	assert.ErrorIs(t, repo.UpdateContact(ctx, ngo.AccountID, entity.Role("admin"), loc, ""), entity.ErrInvalidRole)
}

func TestProfileRepository_Listings(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	located := seedRestaurant(t, db, "b-located@example.org")
	unlocated := &entity.Account{
		Name:         "Account a-unlocated@example.org",
		Email:        "a-unlocated@example.org",
		PasswordHash: "hash",
		Role:         entity.RoleRestaurant,
	}
	require.NoError(t, NewAccountRepository(db).CreateAccount(ctx, unlocated))
	_, _, err := repo.GetOrCreateRestaurant(ctx, unlocated)
	require.NoError(t, err)
	seedNGO(t, db, "n@example.org")

	all, err := repo.ListRestaurants(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a-unlocated@example.org", all[0].Email)

	withCoordinates, err := repo.ListRestaurants(ctx, true)
	require.NoError(t, err)
	require.Len(t, withCoordinates, 1)
	assert.Equal(t, located.ID, withCoordinates[0].ID)

	ngos, err := repo.ListNGOs(ctx)
	require.NoError(t, err)
	require.Len(t, ngos, 1)
	assert.Equal(t, "n@example.org", ngos[0].Email)
}
