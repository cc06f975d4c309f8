package impl

import (
	"context"
	"log/slog"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	minRating = 1
	maxRating = 5
)

// ngoDonations is the donation capability set of one NGO account.
type ngoDonations struct {
	*donationService
	actor entity.NGOActor
}

// ngoScope holds what an NGO operation needs inside its transaction.
type ngoScope struct {
	account   *entity.Account
	profile   *entity.NGOProfile
	donations repository.DonationRepository
	profiles  repository.ProfileRepository
	chats     repository.ChatRepository
}

// withProfile runs fn in a transaction after provisioning the actor's NGO profile.
func (n *ngoDonations) withProfile(ctx context.Context, fn func(scope *ngoScope) error) error {
	return n.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := loadActorAccount(ctx, repoFactory.NewAccountRepository(), n.actor)
		if err != nil {
			return err
		}

		profiles := repoFactory.NewProfileRepository()
		profile, _, err := profiles.GetOrCreateNGO(ctx, account)
		if err != nil {
			return errors.Wrap(err, "failed to provision ngo profile")
		}

		return fn(&ngoScope{
			account:   account,
			profile:   profile,
			donations: repoFactory.NewDonationRepository(),
			profiles:  profiles,
			chats:     repoFactory.NewChatRepository(),
		})
	})
}

func (n *ngoDonations) owns(profileID uuid.UUID) func(*entity.Donation) bool {
	return func(d *entity.Donation) bool {
		return d.RequestedBy != nil && *d.RequestedBy == profileID
	}
}

// Available sweeps expired offers and lists the live ones, soonest expiry first.
func (n *ngoDonations) Available(ctx context.Context, query usecase.AvailableQuery) ([]*usecase.DonationDetail, error) {
	now := n.now()
	available := []entity.DonationStatus{entity.DonationAvailable}

	var details []*usecase.DonationDetail
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		expired, err := scope.donations.ExpireStale(ctx, repository.DonationFilter{Statuses: available}, now)
		if err != nil {
			return errors.Wrap(err, "failed to expire stale donations")
		}
		if expired > 0 {
			n.log(ctx).Debug("Expired stale donations", slog.Int64("count", expired))
		}

		donations, err := scope.donations.ListDonations(ctx, repository.DonationFilter{
			Statuses:     available,
			ExpiresAfter: &now,
			Order:        repository.OrderByExpiryAsc,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list available donations")
		}

		details, err = resolveDetails(ctx, scope.profiles, donations, scope.profile.Location)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get available donations")
	}

	if query.MaxDistanceKm == nil {
		return details, nil
	}

	nearby := make([]*usecase.DonationDetail, 0, len(details))
	for _, detail := range details {
		if detail.DistanceKm != nil && *detail.DistanceKm <= *query.MaxDistanceKm {
			nearby = append(nearby, detail)
		}
	}

	return nearby, nil
}

// Request claims an Available donation and opens the chat with its restaurant.
func (n *ngoDonations) Request(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error) {
	now := n.now()

	var donation *entity.Donation
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		ok, err := scope.donations.MarkRequested(ctx, donationID, scope.profile.ID, n.actor.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to request donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, nil, now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)
		if err != nil {
			return err
		}

		if _, err := scope.chats.GetOrCreateThread(ctx, &entity.ChatThread{
			RestaurantID:        donation.RestaurantID,
			NGOID:               scope.profile.ID,
			RestaurantAccountID: donation.RestaurantAccountID,
			NGOAccountID:        n.actor.ID,
		}); err != nil {
			return errors.Wrap(err, "failed to open chat thread")
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to request donation")
	}

	n.log(ctx).Info("Donation requested",
		slog.String("donation_id", donation.ID.String()),
		slog.String("ngo_account_id", n.actor.ID.String()),
	)
	n.publish(ctx, service.EventDonationRequested, donation, n.actor.ID, &donation.RestaurantAccountID)

	return donation, nil
}

// MyRequests sweeps the NGO's stale requests and lists the live ones, most recent request first.
func (n *ngoDonations) MyRequests(ctx context.Context) ([]*usecase.DonationDetail, error) {
	now := n.now()

	var details []*usecase.DonationDetail
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		if err := n.sweep(ctx, scope, now); err != nil {
			return err
		}

		donations, err := scope.donations.ListDonations(ctx, repository.DonationFilter{
			RequestedBy:  &scope.profile.ID,
			ExpiresAfter: &now,
			Order:        repository.OrderByRequestedDesc,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list requests")
		}

		details, err = resolveDetails(ctx, scope.profiles, donations, scope.profile.Location)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get my requests")
	}

	return details, nil
}

func (n *ngoDonations) sweep(ctx context.Context, scope *ngoScope, now time.Time) error {
	expired, err := scope.donations.ExpireStale(ctx, repository.DonationFilter{
		Statuses:    []entity.DonationStatus{entity.DonationRequested},
		RequestedBy: &scope.profile.ID,
	}, now)
	if err != nil {
		return errors.Wrap(err, "failed to expire stale requests")
	}
	if expired > 0 {
		n.log(ctx).Debug("Expired stale requests", slog.Int64("count", expired), slog.String("ngo_id", scope.profile.ID.String()))
	}

	return nil
}

// Complete records the handover of an Accepted donation the NGO requested.
func (n *ngoDonations) Complete(ctx context.Context, donationID uuid.UUID) (*entity.Donation, error) {
	now := n.now()

	var donation *entity.Donation
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		owner := repository.DonationOwner{Side: entity.RoleNGO, ProfileID: scope.profile.ID}
		ok, err := scope.donations.MarkCompleted(ctx, donationID, owner, now)
		if err != nil {
			return errors.Wrap(err, "failed to complete donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, n.owns(scope.profile.ID), now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to complete donation")
	}

	n.publish(ctx, service.EventDonationCompleted, donation, n.actor.ID, &donation.RestaurantAccountID)

	return donation, nil
}

// Rate stores the NGO's rating and review on a Completed donation it requested.
// Rating again overwrites the previous rating, review and time together.
func (n *ngoDonations) Rate(ctx context.Context, donationID uuid.UUID, input *usecase.RateInput) (*entity.Donation, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, domainerrors.ErrValidationFailed.WithDetails("rating must be between 1 and 5")
	}

	now := n.now()

	var donation *entity.Donation
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		ok, err := scope.donations.SetRating(ctx, donationID, scope.profile.ID, input.Rating, input.Review, now)
		if err != nil {
			return errors.Wrap(err, "failed to rate donation")
		}
		if !ok {
			return explainRejectedTransition(ctx, scope.donations, donationID, n.owns(scope.profile.ID), now)
		}

		donation, err = findDonation(ctx, scope.donations, donationID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to rate donation")
	}

	n.publish(ctx, service.EventDonationRated, donation, n.actor.ID, &donation.RestaurantAccountID)

	return donation, nil
}

// History lists every donation the NGO holds a request on, most recent request first, with per-status counts.
func (n *ngoDonations) History(ctx context.Context) (*usecase.NGOHistory, error) {
	now := n.now()

	var history *usecase.NGOHistory
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		if err := n.sweep(ctx, scope, now); err != nil {
			return err
		}

		donations, err := scope.donations.ListDonations(ctx, repository.DonationFilter{
			RequestedBy: &scope.profile.ID,
			Order:       repository.OrderByRequestedDesc,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list request history")
		}

		details, err := resolveDetails(ctx, scope.profiles, donations, nil)
		if err != nil {
			return err
		}

		history = &usecase.NGOHistory{
			Profile:   scope.profile,
			Donations: details,
			Stats:     ngoStats(donations),
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ngo history")
	}

	return history, nil
}

// PickupQR renders the pickup pass of an Accepted donation the NGO requested.
func (n *ngoDonations) PickupQR(ctx context.Context, donationID uuid.UUID) ([]byte, error) {
	var donation *entity.Donation
	err := n.withProfile(ctx, func(scope *ngoScope) error {
		var err error
		donation, err = findDonation(ctx, scope.donations, donationID)
		if err != nil {
			return err
		}
		if !n.owns(scope.profile.ID)(donation) {
			return domainerrors.ErrDonationOwnership
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load donation for pickup pass")
	}

	return n.pickupQR(donation)
}
