package service

import (
	"context"
)

// MaxPushBatch is the largest number of tokens one multicast may target.
const MaxPushBatch = 500

// PushMessage is a notification rendered for devices.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushResult summarizes one multicast.
type PushResult struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string // Tokens the provider reported as unregistered or malformed.
}

// NotificationService defines the interface for push notification services
type NotificationService interface {
	// SendMulticast sends the message to at most MaxPushBatch device tokens.
	SendMulticast(ctx context.Context, tokens []string, msg *PushMessage) (*PushResult, error)
}
