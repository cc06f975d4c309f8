package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatThreadModel mirrors the 'chat_threads' table. One row per (restaurant, ngo) pair.
// MessageCount is the last sequence number handed out to a message.
type ChatThreadModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_threads_pair,priority:1"`
	NGOID                uuid.UUID `gorm:"column:ngo_id;type:uuid;not null;uniqueIndex:idx_chat_threads_pair,priority:2"`
	RestaurantAccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	NGOAccountID         uuid.UUID `gorm:"column:ngo_account_id;type:uuid;not null;index"`
	MessageCount         int64     `gorm:"not null;default:0"`
	LastMessageAt        time.Time `gorm:"not null"`
	LastReadByRestaurant *time.Time
	LastReadByNGO        *time.Time `gorm:"column:last_read_by_ngo"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Messages []ChatMessageModel `gorm:"foreignKey:ThreadID"`
}

// TableName explicitly sets the table name for GORM.
func (ChatThreadModel) TableName() string {
	return "chat_threads"
}

// ChatMessageModel mirrors the 'chat_messages' table. Rows are never updated.
type ChatMessageModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ThreadID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_messages_thread_seq,priority:1"`
	Seq             int64     `gorm:"not null;uniqueIndex:idx_chat_messages_thread_seq,priority:2"`
	SenderAccountID uuid.UUID `gorm:"type:uuid;not null"`
	SenderRole      string    `gorm:"type:varchar(20);not null"`
	Text            string    `gorm:"type:text;not null"`
	CreatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}
