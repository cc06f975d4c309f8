package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatThread is the single conversation between one restaurant and one NGO.
type ChatThread struct {
	ID                   uuid.UUID      `json:"id"`
	RestaurantID         uuid.UUID      `json:"restaurant"`
	NGOID                uuid.UUID      `json:"ngo"`
	RestaurantAccountID  uuid.UUID      `json:"restaurantUser"`
	NGOAccountID         uuid.UUID      `json:"ngoUser"`
	Messages             []*ChatMessage `json:"messages"`
	LastMessageAt        time.Time      `json:"lastMessage"`
	LastReadByRestaurant *time.Time     `json:"lastReadByRestaurant"`
	LastReadByNGO        *time.Time     `json:"lastReadByNGO"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// ChatMessage is immutable once appended. Seq is the append order within a thread.
type ChatMessage struct {
	ID              uuid.UUID `json:"id"`
	ThreadID        uuid.UUID `json:"-"`
	Seq             int64     `json:"seq"`
	SenderAccountID uuid.UUID `json:"sender"`
	SenderRole      Role      `json:"senderRole"`
	Text            string    `json:"message"`
	CreatedAt       time.Time `json:"timestamp"`
}
