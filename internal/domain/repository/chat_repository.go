package repository

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrChatNotFound is returned when a chat thread is not found.
var ErrChatNotFound = errors.New("chat thread not found")

// ChatRepository stores chat threads and their append-only messages.
type ChatRepository interface {
	// GetOrCreateThread returns the thread for the thread's (restaurant, ngo) pair,
	// inserting the given one if the pair has none yet.
	GetOrCreateThread(ctx context.Context, thread *entity.ChatThread) (*entity.ChatThread, error)

	// FindThreadByID retrieves a thread with its messages in append order.
	FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error)

	// ListThreadsByAccount lists the threads where the account is the participant on the given side,
	// with messages, most recent activity first.
	ListThreadsByAccount(ctx context.Context, side entity.Role, accountID uuid.UUID) ([]*entity.ChatThread, error)

	// AppendMessage assigns the next sequence number to msg, stores it and bumps the thread's last message time.
	AppendMessage(ctx context.Context, threadID uuid.UUID, msg *entity.ChatMessage) error

	// MarkRead sets the last-read marker of the given side.
	MarkRead(ctx context.Context, threadID uuid.UUID, side entity.Role, at time.Time) error

	// DeleteThreads removes threads and their messages.
	DeleteThreads(ctx context.Context, ids []uuid.UUID) error
}
