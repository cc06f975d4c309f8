package postgres

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// donationRepository implements the repository.DonationRepository interface.
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository is the constructor for donationRepository.
func NewDonationRepository(db *gorm.DB) repository.DonationRepository {
	return &donationRepository{
		db: db,
	}
}

// CreateDonation persists a new donation.
func (repo *donationRepository) CreateDonation(ctx context.Context, donation *entity.Donation) error {
	if donation.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate donation ID")
		}
		donation.ID = id
	}

	donationM := fromDonationDomain(donation)
	if err := repo.db.WithContext(ctx).Create(donationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("invalid restaurant reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create donation")
	}

	donation.CreatedAt = donationM.CreatedAt
	donation.UpdatedAt = donationM.UpdatedAt

	return nil
}

// FindDonationByID retrieves a donation from the primary so a read right after a write sees it.
func (repo *donationRepository) FindDonationByID(ctx context.Context, id uuid.UUID) (*entity.Donation, error) {
	var donationM model.DonationModel

	if err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", id).
		First(&donationM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDonationNotFound
		}

		return nil, errors.Wrap(err, "failed to find donation by ID")
	}

	return toDonationDomain(&donationM), nil
}

// ListDonations lists donations matching the filter.
func (repo *donationRepository) ListDonations(ctx context.Context, filter repository.DonationFilter) ([]*entity.Donation, error) {
	var donationModels []*model.DonationModel

	query := repo.db.WithContext(ctx).Scopes(donationScope(filter))
	if filter.ExpiresAfter != nil {
		query = query.Where("expiry_time > ?", filter.ExpiresAfter.UTC())
	}
	if filter.RatedOnly {
		query = query.Where("rating IS NOT NULL")
	}

	if err := query.Order(donationOrder(filter.Order)).Order("id ASC").Find(&donationModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list donations")
	}

	donations := make([]*entity.Donation, 0, len(donationModels))
	for _, donationM := range donationModels {
		donations = append(donations, toDonationDomain(donationM))
	}

	return donations, nil
}

// ExpireStale moves matching donations whose expiry is at or before now to Expired.
// Without explicit statuses it sweeps every expirable status.
func (repo *donationRepository) ExpireStale(ctx context.Context, filter repository.DonationFilter, now time.Time) (int64, error) {
	if len(filter.Statuses) == 0 {
		filter.Statuses = entity.ExpirableStatuses
	}

	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Scopes(donationScope(filter)).
		Where("expiry_time <= ?", now.UTC()).
		Updates(map[string]any{
			"status":     string(entity.DonationExpired),
			"updated_at": now.UTC(),
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to expire stale donations")
	}

	return result.RowsAffected, nil
}

// MarkRequested claims an unexpired Available donation for the NGO.
func (repo *donationRepository) MarkRequested(ctx context.Context, id, ngoProfileID, ngoAccountID uuid.UUID, now time.Time) (bool, error) {
	now = now.UTC()

	return repo.transition(ctx, "mark requested",
		map[string]any{
			"status":               string(entity.DonationRequested),
			"requested_by":         ngoProfileID,
			"requested_by_account": ngoAccountID,
			"requested_at":         now,
			"updated_at":           now,
		},
		"id = ? AND status = ? AND expiry_time > ?", id, string(entity.DonationAvailable), now)
}

// MarkAccepted accepts a Requested donation owned by the restaurant.
func (repo *donationRepository) MarkAccepted(ctx context.Context, id, restaurantID uuid.UUID, now time.Time) (bool, error) {
	now = now.UTC()

	return repo.transition(ctx, "mark accepted",
		map[string]any{
			"status":      string(entity.DonationAccepted),
			"accepted_at": now,
			"updated_at":  now,
		},
		"id = ? AND status = ? AND restaurant_id = ?", id, string(entity.DonationRequested), restaurantID)
}

// MarkRejected returns a Requested donation owned by the restaurant to Available and clears the requester.
func (repo *donationRepository) MarkRejected(ctx context.Context, id, restaurantID uuid.UUID) (bool, error) {
	return repo.transition(ctx, "mark rejected",
		map[string]any{
			"status":               string(entity.DonationAvailable),
			"requested_by":         nil,
			"requested_by_account": nil,
			"requested_at":         nil,
			"updated_at":           time.Now().UTC(),
		},
		"id = ? AND status = ? AND restaurant_id = ?", id, string(entity.DonationRequested), restaurantID)
}

// MarkCompleted completes an Accepted donation on behalf of its restaurant or its requesting NGO.
func (repo *donationRepository) MarkCompleted(ctx context.Context, id uuid.UUID, owner repository.DonationOwner, now time.Time) (bool, error) {
	column, err := ownerColumn(owner.Side)
	if err != nil {
		return false, err
	}
	now = now.UTC()

	return repo.transition(ctx, "mark completed",
		map[string]any{
			"status":       string(entity.DonationCompleted),
			"completed_at": now,
			"updated_at":   now,
		},
		"id = ? AND status = ? AND "+column+" = ?", id, string(entity.DonationAccepted), owner.ProfileID)
}

// SetRating writes rating, review and ratedAt together on a Completed donation requested by the NGO.
func (repo *donationRepository) SetRating(ctx context.Context, id, ngoProfileID uuid.UUID, rating int, review string, now time.Time) (bool, error) {
	now = now.UTC()

	return repo.transition(ctx, "set rating",
		map[string]any{
			"rating":     rating,
			"review":     review,
			"rated_at":   now,
			"updated_at": now,
		},
		"id = ? AND status = ? AND requested_by = ?", id, string(entity.DonationCompleted), ngoProfileID)
}

// transition runs one guarded UPDATE and reports whether the guard matched.
func (repo *donationRepository) transition(ctx context.Context, op string, updates map[string]any, guard string, args ...any) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.DonationModel{}).
		Where(guard, args...).
		Updates(updates)
	if result.Error != nil {
		return false, errors.Wrapf(result.Error, "failed to %s", op)
	}

	return result.RowsAffected == 1, nil
}

func donationScope(filter repository.DonationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, status := range filter.Statuses {
				statuses = append(statuses, string(status))
			}
			db = db.Where("status IN ?", statuses)
		}
		if filter.RestaurantID != nil {
			db = db.Where("restaurant_id = ?", *filter.RestaurantID)
		}
		if filter.RequestedBy != nil {
			db = db.Where("requested_by = ?", *filter.RequestedBy)
		}

		return db
	}
}

func donationOrder(order repository.DonationOrder) string {
	switch order {
	case repository.OrderByCreatedDesc:
		return "created_at DESC"
	case repository.OrderByRequestedDesc:
		return "requested_at DESC"
	case repository.OrderByRatedDesc:
		return "rated_at DESC"
	default:
		return "expiry_time ASC"
	}
}

func ownerColumn(side entity.Role) (string, error) {
	switch side {
	case entity.RoleRestaurant:
		return "restaurant_id", nil
	case entity.RoleNGO:
		return "requested_by", nil
	default:
		return "", errors.Wrapf(entity.ErrInvalidRole, "role %q", side)
	}
}

// --- Mapper Functions ---

// toDonationDomain converts a GORM DonationModel to a domain Donation entity.
func toDonationDomain(data *model.DonationModel) *entity.Donation {
	if data == nil {
		return nil
	}

	return &entity.Donation{
		ID:                  data.ID,
		RestaurantID:        data.RestaurantID,
		RestaurantAccountID: data.RestaurantAccountID,
		FoodType:            data.FoodType,
		Quantity:            data.Quantity,
		ExpiryTime:          data.ExpiryTime,
		PickupLocation:      data.PickupLocation,
		PreferredOption:     entity.PreferredOption(data.PreferredOption),
		Status:              entity.DonationStatus(data.Status),
		RequestedBy:         data.RequestedBy,
		RequestedByAccount:  data.RequestedByAccount,
		RequestedAt:         data.RequestedAt,
		AcceptedAt:          data.AcceptedAt,
		CompletedAt:         data.CompletedAt,
		Rating:              data.Rating,
		Review:              data.Review,
		RatedAt:             data.RatedAt,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

// fromDonationDomain converts a domain Donation entity to a GORM DonationModel.
func fromDonationDomain(data *entity.Donation) *model.DonationModel {
	if data == nil {
		return nil
	}

	return &model.DonationModel{
		ID:                  data.ID,
		RestaurantID:        data.RestaurantID,
		RestaurantAccountID: data.RestaurantAccountID,
		FoodType:            data.FoodType,
		Quantity:            data.Quantity,
		ExpiryTime:          data.ExpiryTime.UTC(),
		PickupLocation:      data.PickupLocation,
		PreferredOption:     string(data.PreferredOption),
		Status:              string(data.Status),
		RequestedBy:         data.RequestedBy,
		RequestedByAccount:  data.RequestedByAccount,
		RequestedAt:         data.RequestedAt,
		AcceptedAt:          data.AcceptedAt,
		CompletedAt:         data.CompletedAt,
		Rating:              data.Rating,
		Review:              data.Review,
		RatedAt:             data.RatedAt,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}
