package usecase

import (
	"context"

	"foodbridge/internal/domain/service"
)

// DeliveryReport summarizes the pushes sent for one donation event.
type DeliveryReport struct {
	Devices int
	Sent    int
	Failed  int
	Pruned  int // Devices removed because the provider rejected their token.
}

// NotificationUsecase turns donation lifecycle events into device pushes.
type NotificationUsecase interface {
	// DeliverDonationEvent pushes the event to every active device of its recipient.
	// A malformed event fails with a client AppError and should not be retried.
	DeliverDonationEvent(ctx context.Context, event *service.DonationEvent) (*DeliveryReport, error)
}
