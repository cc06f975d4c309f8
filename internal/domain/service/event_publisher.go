package service

import (
	"context"
	"time"
)

// DonationEventType names a committed lifecycle transition.
type DonationEventType string

const (
	EventDonationRequested DonationEventType = "donation.requested"
	EventDonationAccepted  DonationEventType = "donation.accepted"
	EventDonationRejected  DonationEventType = "donation.rejected"
	EventDonationCompleted DonationEventType = "donation.completed"
	EventDonationRated     DonationEventType = "donation.rated"
)

// DonationEvent is published after a donation transition commits and is
// consumed by the notifier worker.
type DonationEvent struct {
	RequestID          string            `json:"request_id,omitempty"` // For distributed tracing
	EventID            string            `json:"event_id"`
	Type               DonationEventType `json:"type"`
	DonationID         string            `json:"donation_id"`
	FoodType           string            `json:"food_type"`
	Quantity           string            `json:"quantity"`
	Status             string            `json:"status"`
	ActorAccountID     string            `json:"actor_account_id"`
	RecipientAccountID string            `json:"recipient_account_id"` // The counterpart to notify
	OccurredAt         time.Time         `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishDonationEvent publishes a donation event for async processing
	PublishDonationEvent(ctx context.Context, event *DonationEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
