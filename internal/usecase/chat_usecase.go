package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// ChatDetail is a thread with both participant profiles resolved.
type ChatDetail struct {
	Thread     *entity.ChatThread
	Restaurant *entity.RestaurantProfile
	NGO        *entity.NGOProfile
}

// ChatUsecase defines the messaging operations between a restaurant and an NGO.
// Every operation on a thread requires the actor to be one of its participants.
type ChatUsecase interface {
	// ListThreads returns the actor's threads, one per pair, most recent activity first.
	ListThreads(ctx context.Context, actor entity.Actor) ([]*ChatDetail, error)
	GetThread(ctx context.Context, actor entity.Actor, threadID uuid.UUID) (*ChatDetail, error)
	AppendMessage(ctx context.Context, actor entity.Actor, threadID uuid.UUID, text string) (*ChatDetail, error)
	MarkRead(ctx context.Context, actor entity.Actor, threadID uuid.UUID) error
}
