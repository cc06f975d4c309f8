package postgres

import (
	"context"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// profileRepository implements the repository.ProfileRepository interface.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

// GetOrCreateRestaurant inserts a minimal profile unless one exists for the account, then reads it back from the primary.
func (repo *profileRepository) GetOrCreateRestaurant(ctx context.Context, account *entity.Account) (*entity.RestaurantProfile, bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to generate profile ID")
	}

	lat, lng, address := splitLocation(account.Location)
	candidate := &model.RestaurantProfileModel{
		ID:        id,
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Phone:     account.Phone,
		Address:   address,
		Latitude:  lat,
		Longitude: lng,
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_id"}}, DoNothing: true}).
		Create(candidate)
	if result.Error != nil {
		return nil, false, errors.Wrap(result.Error, "failed to create restaurant profile")
	}

	var profileM model.RestaurantProfileModel
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("account_id = ?", account.ID).
		First(&profileM).Error; err != nil {
		return nil, false, errors.Wrap(err, "failed to read restaurant profile")
	}

	return toRestaurantProfileDomain(&profileM), result.RowsAffected == 1, nil
}

// GetOrCreateNGO inserts a minimal profile unless one exists for the account, then reads it back from the primary.
func (repo *profileRepository) GetOrCreateNGO(ctx context.Context, account *entity.Account) (*entity.NGOProfile, bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to generate profile ID")
	}

	lat, lng, address := splitLocation(account.Location)
	candidate := &model.NGOProfileModel{
		ID:        id,
		AccountID: account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Phone:     account.Phone,
		Address:   address,
		Latitude:  lat,
		Longitude: lng,
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "account_id"}}, DoNothing: true}).
		Create(candidate)
	if result.Error != nil {
		return nil, false, errors.Wrap(result.Error, "failed to create ngo profile")
	}

	var profileM model.NGOProfileModel
	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("account_id = ?", account.ID).
		First(&profileM).Error; err != nil {
		return nil, false, errors.Wrap(err, "failed to read ngo profile")
	}

	return toNGOProfileDomain(&profileM), result.RowsAffected == 1, nil
}

// FindRestaurantByID retrieves a restaurant profile by its ID.
func (repo *profileRepository) FindRestaurantByID(ctx context.Context, id uuid.UUID) (*entity.RestaurantProfile, error) {
	var profileM model.RestaurantProfileModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profileM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find restaurant profile")
	}

	return toRestaurantProfileDomain(&profileM), nil
}

// FindRestaurantsByIDs retrieves restaurant profiles keyed by ID.
func (repo *profileRepository) FindRestaurantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.RestaurantProfile, error) {
	profiles := make(map[uuid.UUID]*entity.RestaurantProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	var profileModels []*model.RestaurantProfileModel
	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find restaurant profiles")
	}

	for _, profileM := range profileModels {
		profiles[profileM.ID] = toRestaurantProfileDomain(profileM)
	}

	return profiles, nil
}

// FindNGOsByIDs retrieves NGO profiles keyed by ID.
func (repo *profileRepository) FindNGOsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.NGOProfile, error) {
	profiles := make(map[uuid.UUID]*entity.NGOProfile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	var profileModels []*model.NGOProfileModel
	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find ngo profiles")
	}

	for _, profileM := range profileModels {
		profiles[profileM.ID] = toNGOProfileDomain(profileM)
	}

	return profiles, nil
}

// ListRestaurants lists restaurant profiles ordered by name.
func (repo *profileRepository) ListRestaurants(ctx context.Context, withCoordinatesOnly bool) ([]*entity.RestaurantProfile, error) {
	var profileModels []*model.RestaurantProfileModel

	query := repo.db.WithContext(ctx)
	if withCoordinatesOnly {
		query = query.Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	}

	if err := query.Order("name ASC").Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list restaurant profiles")
	}

	profiles := make([]*entity.RestaurantProfile, 0, len(profileModels))
	for _, profileM := range profileModels {
		profiles = append(profiles, toRestaurantProfileDomain(profileM))
	}

	return profiles, nil
}

// ListNGOs lists NGO profiles ordered by name.
func (repo *profileRepository) ListNGOs(ctx context.Context) ([]*entity.NGOProfile, error) {
	var profileModels []*model.NGOProfileModel
	if err := repo.db.WithContext(ctx).Order("name ASC").Find(&profileModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list ngo profiles")
	}

	profiles := make([]*entity.NGOProfile, 0, len(profileModels))
	for _, profileM := range profileModels {
		profiles = append(profiles, toNGOProfileDomain(profileM))
	}

	return profiles, nil
}

// UpdateContact copies location and phone onto the account's profile. A missing profile is not an error.
func (repo *profileRepository) UpdateContact(ctx context.Context, accountID uuid.UUID, role entity.Role, location *entity.GeoLocation, phone string) error {
	updates := map[string]any{}
	locationColumns(location, updates)
	if phone != "" {
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return nil
	}

	var target any
	switch role {
	case entity.RoleRestaurant:
		target = &model.RestaurantProfileModel{}
	case entity.RoleNGO:
		target = &model.NGOProfileModel{}
	default:
		return errors.Wrapf(entity.ErrInvalidRole, "role %q", role)
	}

	if err := repo.db.WithContext(ctx).
		Model(target).
		Where("account_id = ?", accountID).
		Updates(updates).Error; err != nil {
		return errors.Wrap(err, "failed to update profile contact")
	}

	return nil
}

// --- Mapper Functions ---

func toRestaurantProfileDomain(data *model.RestaurantProfileModel) *entity.RestaurantProfile {
	if data == nil {
		return nil
	}

	return &entity.RestaurantProfile{
		ID:          data.ID,
		AccountID:   data.AccountID,
		Name:        data.Name,
		Email:       data.Email,
		Phone:       data.Phone,
		Address:     data.Address,
		Description: data.Description,
		Location:    toGeoLocation(data.Latitude, data.Longitude, data.Address),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func toNGOProfileDomain(data *model.NGOProfileModel) *entity.NGOProfile {
	if data == nil {
		return nil
	}

	return &entity.NGOProfile{
		ID:        data.ID,
		AccountID: data.AccountID,
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Address:   data.Address,
		Location:  toGeoLocation(data.Latitude, data.Longitude, data.Address),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
