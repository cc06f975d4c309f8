package impl

import (
	"context"
	"fmt"
	"log/slog"

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

type notificationService struct {
	deviceRepo repository.DeviceRepository
	pusher     service.NotificationService
	logger     *slog.Logger
}

// NotificationServiceParams holds dependencies for NotificationService, injected by Fx.
type NotificationServiceParams struct {
	fx.In

	DeviceRepo repository.DeviceRepository
	Pusher     service.NotificationService
	Logger     *slog.Logger
}

func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	return &notificationService{
		deviceRepo: params.DeviceRepo,
		pusher:     params.Pusher,
		logger:     params.Logger,
	}
}

func (srv *notificationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// DeliverDonationEvent sends the event to the recipient's devices in batches and prunes rejected tokens.
// It fails only when nothing could be sent, so the queue redelivers the event.
func (srv *notificationService) DeliverDonationEvent(ctx context.Context, event *service.DonationEvent) (*usecase.DeliveryReport, error) {
	recipient, err := uuid.Parse(event.RecipientAccountID)
	if err != nil || recipient == uuid.Nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("event has no valid recipient")
	}

	msg, ok := renderDonationPush(event)
	if !ok {
		return nil, domainerrors.ErrValidationFailed.WithDetails("unknown event type " + string(event.Type))
	}

	devices, err := srv.deviceRepo.FindActiveDevicesByAccounts(ctx, []uuid.UUID{recipient})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find recipient devices")
	}

	report := &usecase.DeliveryReport{Devices: len(devices)}
	if len(devices) == 0 {
		srv.log(ctx).Info("No devices to notify",
			slog.String("event_id", event.EventID),
			slog.String("recipient", recipient.String()),
		)

		return report, nil
	}

	byToken := make(map[string]*entity.UserDevice, len(devices))
	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		byToken[device.FCMToken] = device
		tokens = append(tokens, device.FCMToken)
	}

	var lastErr error
	var invalid []string
	for start := 0; start < len(tokens); start += service.MaxPushBatch {
		batch := tokens[start:min(start+service.MaxPushBatch, len(tokens))]

		result, err := srv.pusher.SendMulticast(ctx, batch, msg)
		if err != nil {
			srv.log(ctx).Error("Failed to send push batch",
				slog.String("event_id", event.EventID),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err),
			)
			report.Failed += len(batch)
			lastErr = err

			continue
		}

		report.Sent += result.SuccessCount
		report.Failed += result.FailureCount
		invalid = append(invalid, result.InvalidTokens...)
	}

	for _, token := range invalid {
		device, ok := byToken[token]
		if !ok {
			continue
		}
		if err := srv.deviceRepo.DeleteDevice(ctx, device.ID); err != nil {
			srv.log(ctx).Warn("Failed to prune device", slog.String("device_id", device.ID.String()), slog.Any("error", err))

			continue
		}
		report.Pruned++
	}

	if report.Sent == 0 && lastErr != nil {
		return report, errors.Wrap(lastErr, "failed to deliver push notification")
	}

	srv.log(ctx).Info("Donation event delivered",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.Int("pruned", report.Pruned),
	)

	return report, nil
}

func renderDonationPush(event *service.DonationEvent) (*service.PushMessage, bool) {
	food := event.FoodType
	if event.Quantity != "" {
		food = fmt.Sprintf("%s (%s)", event.FoodType, event.Quantity)
	}

	var title, body string
	switch event.Type {
	case service.EventDonationRequested:
		title, body = "New donation request", fmt.Sprintf("An NGO requested your %s.", food)
	case service.EventDonationAccepted:
		title, body = "Request accepted", fmt.Sprintf("Your request for %s was accepted.", food)
	case service.EventDonationRejected:
		title, body = "Request declined", fmt.Sprintf("Your request for %s was declined.", food)
	case service.EventDonationCompleted:
		title, body = "Donation completed", fmt.Sprintf("The donation of %s is complete.", food)
	case service.EventDonationRated:
		title, body = "New review", fmt.Sprintf("Your donation of %s received a rating.", food)
	default:
		return nil, false
	}

	return &service.PushMessage{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"event_id":    event.EventID,
			"type":        string(event.Type),
			"donation_id": event.DonationID,
			"status":      event.Status,
		},
	}, true
}
