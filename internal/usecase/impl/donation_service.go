package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// donationService implements the DonationUsecase interface.
// Every mutating operation runs in one transaction that starts with the caller's profile lookup,
// and lifecycle events are published only after that transaction commits.
type donationService struct {
	txManager    repository.TransactionManager
	donationRepo repository.DonationRepository
	publisher    service.EventPublisher
	qrCodes      service.QRCodeService
	logger       *slog.Logger
	now          func() time.Time
}

// DonationServiceParams holds dependencies for DonationService, injected by Fx.
type DonationServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	DonationRepo   repository.DonationRepository
	EventPublisher service.EventPublisher
	QRCodeService  service.QRCodeService
	Logger         *slog.Logger
}

// NewDonationService creates a new donation service instance.
func NewDonationService(params DonationServiceParams) usecase.DonationUsecase {
	return &donationService{
		txManager:    params.TxManager,
		donationRepo: params.DonationRepo,
		publisher:    params.EventPublisher,
		qrCodes:      params.QRCodeService,
		logger:       params.Logger,
		now:          utcNow,
	}
}

func (srv *donationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// AsRestaurant returns the restaurant capability set bound to the actor.
func (srv *donationService) AsRestaurant(actor entity.RestaurantActor) usecase.RestaurantDonations {
	return &restaurantDonations{donationService: srv, actor: actor}
}

// AsNGO returns the NGO capability set bound to the actor.
func (srv *donationService) AsNGO(actor entity.NGOActor) usecase.NGODonations {
	return &ngoDonations{donationService: srv, actor: actor}
}

// AsParticipant returns the capabilities both sides of a donation share.
func (srv *donationService) AsParticipant(actor entity.Actor) (usecase.DonationParticipant, error) {
	switch a := actor.(type) {
	case entity.RestaurantActor:
		return srv.AsRestaurant(a), nil
	case entity.NGOActor:
		return srv.AsNGO(a), nil
	default:
		return nil, domainerrors.ErrForbidden.WrapMessage("unknown actor")
	}
}

// Reviews lists the ratings of a restaurant's completed donations, newest first, with their average.
func (srv *donationService) Reviews(ctx context.Context, restaurantID uuid.UUID) (*usecase.ReviewSummary, error) {
	donations, err := srv.donationRepo.ListDonations(ctx, repository.DonationFilter{
		Statuses:     []entity.DonationStatus{entity.DonationCompleted},
		RestaurantID: &restaurantID,
		RatedOnly:    true,
		Order:        repository.OrderByRatedDesc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rated donations")
	}

	return summarizeReviews(donations), nil
}

// resolveDetails attaches both profiles to each donation and the distance from the viewer when known.
func resolveDetails(ctx context.Context, profiles repository.ProfileRepository, donations []*entity.Donation, viewer *entity.GeoLocation) ([]*usecase.DonationDetail, error) {
	restaurants, err := profiles.FindRestaurantsByIDs(ctx, collectIDs(donations, func(d *entity.Donation) *uuid.UUID {
		return &d.RestaurantID
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve restaurants")
	}

	ngos, err := profiles.FindNGOsByIDs(ctx, collectIDs(donations, func(d *entity.Donation) *uuid.UUID {
		return d.RequestedBy
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve requesters")
	}

	details := make([]*usecase.DonationDetail, 0, len(donations))
	for _, donation := range donations {
		detail := &usecase.DonationDetail{
			Donation:   donation,
			Restaurant: restaurants[donation.RestaurantID],
		}
		if donation.RequestedBy != nil {
			detail.Requester = ngos[*donation.RequestedBy]
		}
		if detail.Restaurant != nil {
			if km, ok := viewer.DistanceKm(detail.Restaurant.Location); ok {
				detail.DistanceKm = &km
			}
		}
		details = append(details, detail)
	}

	return details, nil
}

// explainRejectedTransition re-reads a donation whose conditional update matched no row
// and reports why: missing, owned by someone else, or in the wrong state.
func explainRejectedTransition(
	ctx context.Context,
	donations repository.DonationRepository,
	id uuid.UUID,
	owns func(*entity.Donation) bool,
	now time.Time,
) error {
	donation, err := donations.FindDonationByID(ctx, id)
	if errors.Is(err, repository.ErrDonationNotFound) {
		return domainerrors.ErrDonationNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to re-read donation")
	}

	if owns != nil && !owns(donation) {
		return domainerrors.ErrDonationOwnership
	}

	if donation.Status == entity.DonationAvailable && donation.IsExpiredAt(now) {
		return domainerrors.ErrInvalidState.WithDetails("donation has expired")
	}

	return domainerrors.ErrInvalidState.WithDetails(fmt.Sprintf("donation is %s", donation.Status))
}

// findDonation maps a missing donation to its application error.
func findDonation(ctx context.Context, donations repository.DonationRepository, id uuid.UUID) (*entity.Donation, error) {
	donation, err := donations.FindDonationByID(ctx, id)
	if errors.Is(err, repository.ErrDonationNotFound) {
		return nil, domainerrors.ErrDonationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find donation")
	}

	return donation, nil
}

// pickupQR renders the pass of an Accepted donation once the caller's ownership is established.
func (srv *donationService) pickupQR(donation *entity.Donation) ([]byte, error) {
	if donation.Status != entity.DonationAccepted || donation.RequestedBy == nil {
		return nil, domainerrors.ErrInvalidState.WithDetails("pickup passes exist only for accepted donations")
	}

	png, err := srv.qrCodes.GeneratePickupQR(&service.PickupPass{
		DonationID:      donation.ID,
		RestaurantID:    donation.RestaurantID,
		NGOID:           *donation.RequestedBy,
		PickupLocation:  donation.PickupLocation,
		PreferredOption: string(donation.PreferredOption),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render pickup QR code")
	}

	return png, nil
}

// publish emits a lifecycle event for a committed transition. Failures are logged and never surface.
func (srv *donationService) publish(ctx context.Context, eventType service.DonationEventType, donation *entity.Donation, actorID uuid.UUID, recipient *uuid.UUID) {
	if recipient == nil || donation == nil {
		return
	}

	event := &service.DonationEvent{
		RequestID:          deliverycontext.GetRequestIDFromContext(ctx),
		EventID:            uuid.NewString(),
		Type:               eventType,
		DonationID:         donation.ID.String(),
		FoodType:           donation.FoodType,
		Quantity:           donation.Quantity,
		Status:             string(donation.Status),
		ActorAccountID:     actorID.String(),
		RecipientAccountID: recipient.String(),
		OccurredAt:         srv.now(),
	}

	if err := srv.publisher.PublishDonationEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish donation event",
			slog.String("event_type", string(eventType)),
			slog.String("donation_id", event.DonationID),
			slog.Any("error", err),
		)
	}
}
