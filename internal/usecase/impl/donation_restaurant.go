package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// restaurantDonations is the donation capability set of one restaurant account.
type restaurantDonations struct {
	*donationService
	actor entity.RestaurantActor
}

// restaurantScope holds what a restaurant operation needs inside its transaction.
type restaurantScope struct {
	profile   *entity.RestaurantProfile
	donations repository.DonationRepository
	profiles  repository.ProfileRepository
}

// withProfile runs fn in a transaction after provisioning the actor's restaurant profile.
func (r *restaurantDonations) withProfile(ctx context.Context, fn func(scope *restaurantScope) error) error {
	return r.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := loadActorAccount(ctx, repoFactory.NewAccountRepository(), r.actor)
		if err != nil {
			return err
		}

		profiles := repoFactory.NewProfileRepository()
		profile, _, err := profiles.GetOrCreateRestaurant(ctx, account)
		if err != nil {
			return errors.Wrap(err, "failed to provision restaurant profile")
		}

		return fn(&restaurantScope{
			profile:   profile,
			donations: repoFactory.NewDonationRepository(),
			profiles:  profiles,
		})
	})
}

func (r *restaurantDonations) owns(profileID uuid.UUID) func(*entity.Donation) bool {
	return func(d *entity.Donation) bool {
		return d.RestaurantID == profileID
	}
}

// Create publishes a new Available offer.
func (r *restaurantDonations) Create(ctx context.Context, input *usecase.CreateDonationInput) (*entity.Donation, error) {
	now := r.now()
	if err := validateDonationInput(input, now); err != nil {
		return nil, err
	}

	var donation *entity.Donation
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		donation = &entity.Donation{
			RestaurantID:        scope.profile.ID,
			RestaurantAccountID: r.actor.ID,
			FoodType:            strings.TrimSpace(input.FoodType),
			Quantity:            strings.TrimSpace(input.Quantity),
			ExpiryTime:          input.ExpiryTime.UTC(),
			PickupLocation:      strings.TrimSpace(input.PickupLocation),
			PreferredOption:     input.PreferredOption,
			Status:              entity.DonationAvailable,
		}

		return scope.donations.CreateDonation(ctx, donation)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create donation")
	}

	r.log(ctx).Info("Donation created",
		slog.String("donation_id", donation.ID.String()),
		slog.String("restaurant_id", donation.RestaurantID.String()),
	)

	return donation, nil
}

func validateDonationInput(input *usecase.CreateDonationInput, now time.Time) error {
	switch {
	case strings.TrimSpace(input.FoodType) == "":
		return domainerrors.ErrValidationFailed.WithDetails("foodType is required")
	case strings.TrimSpace(input.Quantity) == "":
		return domainerrors.ErrValidationFailed.WithDetails("quantity is required")
	case strings.TrimSpace(input.PickupLocation) == "":
		return domainerrors.ErrValidationFailed.WithDetails("pickupLocation is required")
	case !input.PreferredOption.IsValid():
		return domainerrors.ErrValidationFailed.WithDetails("preferredOption must be \"NGO Pickup\" or \"Restaurant Delivery\"")
	case !input.ExpiryTime.After(now):
		return domainerrors.ErrValidationFailed.WithDetails("expiryTime must be in the future")
	}

	return nil
}

// PendingRequests sweeps the restaurant's stale offers and lists the live ones awaiting an answer.
func (r *restaurantDonations) PendingRequests(ctx context.Context) ([]*usecase.DonationDetail, error) {
	now := r.now()

	var details []*usecase.DonationDetail
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		if err := r.sweep(ctx, scope, now); err != nil {
			return err
		}

		donations, err := scope.donations.ListDonations(ctx, repository.DonationFilter{
			Statuses:     []entity.DonationStatus{entity.DonationRequested},
			RestaurantID: &scope.profile.ID,
			ExpiresAfter: &now,
			Order:        repository.OrderByRequestedDesc,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list pending requests")
		}

		details, err = resolveDetails(ctx, scope.profiles, donations, scope.profile.Location)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending requests")
	}

	return details, nil
}

func (r *restaurantDonations) sweep(ctx context.Context, scope *restaurantScope, now time.Time) error {
	expired, err := scope.donations.ExpireStale(ctx, repository.DonationFilter{
		Statuses:     entity.ExpirableStatuses,
		RestaurantID: &scope.profile.ID,
	}, now)
	if err != nil {
		return errors.Wrap(err, "failed to expire stale donations")
	}
	if expired > 0 {
		r.log(ctx).Debug("Expired stale donations", slog.Int64("count", expired), slog.String("restaurant_id", scope.profile.ID.String()))
	}

	return nil
}

// Accept agrees to hand the donation to the NGO that requested it.
func (r *restaurantDonations) Accept(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error) {
	now := r.now()

	var donation *entity.Donation
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		ok, err := scope.donations.MarkAccepted(ctx, donationID, scope.profile.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to accept donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, r.owns(scope.profile.ID), now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to accept donation")
	}

	r.publish(ctx, service.EventDonationAccepted, donation, r.actor.ID, donation.RequestedByAccount)

	return donation, nil
}

// Reject turns the request down and reopens the offer.
func (r *restaurantDonations) Reject(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error) {
	now := r.now()

	var (
		donation  *entity.Donation
		requester *uuid.UUID
	)
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		before, err := findDonation(ctx, scope.donations, donationID)
		if err != nil {
			return err
		}
		requester = before.RequestedByAccount

		ok, err := scope.donations.MarkRejected(ctx, donationID, scope.profile.ID)
		if err != nil {
			return errors.Wrap(err, "failed to reject donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, r.owns(scope.profile.ID), now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reject donation")
	}

	r.publish(ctx, service.EventDonationRejected, donation, r.actor.ID, requester)

	return donation, nil
}

// Complete records the handover of an Accepted donation.
func (r *restaurantDonations) Complete(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error) {
	now := r.now()

	var donation *entity.Donation
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		owner := repository.DonationOwner{Side: entity.RoleRestaurant, ProfileID: scope.profile.ID}
		ok, err := scope.donations.MarkCompleted(ctx, donationID, owner, now)
		if err != nil {
			return errors.Wrap(err, "failed to complete donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, r.owns(scope.profile.ID), now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to complete donation")
	}

	r.publish(ctx, service.EventDonationCompleted, donation, r.actor.ID, donation.RequestedByAccount)

	return donation, nil
}

// History lists every donation the restaurant offered, newest first, with per-status counts.
func (r *restaurantDonations) History(ctx context.Context) (*usecase.RestaurantHistory, error) {
	now := r.now()

	var history *usecase.RestaurantHistory
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		if err := r.sweep(ctx, scope, now); err != nil {
			return err
		}

		donations, err := scope.donations.ListDonations(ctx, repository.DonationFilter{
			RestaurantID: &scope.profile.ID,
			Order:        repository.OrderByCreatedDesc,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list donation history")
		}

		details, err := resolveDetails(ctx, scope.profiles, donations, nil)
		if err != nil {
			return err
		}

		history = &usecase.RestaurantHistory{
			Profile:   scope.profile,
			Donations: details,
			Stats:     restaurantStats(donations),
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get restaurant history")
	}

	return history, nil
}

// PickupQR renders the pickup pass of one of the restaurant's Accepted donations.
func (r *restaurantDonations) PickupQR(ctx context.Context, donationID uuid.UUID) ([]byte, error) {
	var donation *entity.Donation
	err := r.withProfile(ctx, func(scope *restaurantScope) error {
		var err error
		donation, err = findDonation(ctx, scope.donations, donationID)
		if err != nil {
			return err
		}
		if !r.owns(scope.profile.ID)(donation) {
			return domainerrors.ErrDonationOwnership
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load donation for pickup pass")
	}

	return r.pickupQR(donation)
}
