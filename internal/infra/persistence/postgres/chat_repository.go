package postgres

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// chatRepository implements the repository.ChatRepository interface.
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository is the constructor for chatRepository.
func NewChatRepository(db *gorm.DB) repository.ChatRepository {
	return &chatRepository{
		db: db,
	}
}

// GetOrCreateThread inserts the thread unless its pair already has one, then reads the pair's thread from the primary.
func (repo *chatRepository) GetOrCreateThread(ctx context.Context, thread *entity.ChatThread) (*entity.ChatThread, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate thread ID")
	}

	now := time.Now().UTC()
	candidate := &model.ChatThreadModel{
		ID:                  id,
		RestaurantID:        thread.RestaurantID,
		NGOID:               thread.NGOID,
		RestaurantAccountID: thread.RestaurantAccountID,
		NGOAccountID:        thread.NGOAccountID,
		LastMessageAt:       now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := repo.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "ngo_id"}},
			DoNothing: true,
		}).
		Create(candidate).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create chat thread")
	}

	var threadM model.ChatThreadModel
	if err := repo.withMessages(ctx).
		Clauses(dbresolver.Write).
		Where("restaurant_id = ? AND ngo_id = ?", thread.RestaurantID, thread.NGOID).
		First(&threadM).Error; err != nil {
		return nil, errors.Wrap(err, "failed to read chat thread")
	}

	return toChatThreadDomain(&threadM), nil
}

// FindThreadByID retrieves a thread with its messages in append order.
func (repo *chatRepository) FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error) {
	var threadM model.ChatThreadModel

	if err := repo.withMessages(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", id).
		First(&threadM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrChatNotFound
		}

		return nil, errors.Wrap(err, "failed to find chat thread by ID")
	}

	return toChatThreadDomain(&threadM), nil
}

// ListThreadsByAccount lists the account's threads on the given side, most recent activity first.
func (repo *chatRepository) ListThreadsByAccount(ctx context.Context, side entity.Role, accountID uuid.UUID) ([]*entity.ChatThread, error) {
	var column string
	switch side {
	case entity.RoleRestaurant:
		column = "restaurant_account_id"
	case entity.RoleNGO:
		column = "ngo_account_id"
	default:
		return nil, errors.Wrapf(entity.ErrInvalidRole, "role %q", side)
	}

	var threadModels []*model.ChatThreadModel
	if err := repo.withMessages(ctx).
		Where(column+" = ?", accountID).
		Order("last_message_at DESC").
		Find(&threadModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list chat threads")
	}

	threads := make([]*entity.ChatThread, 0, len(threadModels))
	for _, threadM := range threadModels {
		threads = append(threads, toChatThreadDomain(threadM))
	}

	return threads, nil
}

// AppendMessage bumps the thread's counter and stores msg under the new sequence number.
// The counter update holds the thread row lock until the insert commits, so sequence numbers never collide.
func (repo *chatRepository) AppendMessage(ctx context.Context, threadID uuid.UUID, msg *entity.ChatMessage) error {
	if msg.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate message ID")
		}
		msg.ID = id
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()
	msg.ThreadID = threadID

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ChatThreadModel{}).
			Where("id = ?", threadID).
			Updates(map[string]any{
				"message_count":   gorm.Expr("message_count + 1"),
				"last_message_at": msg.CreatedAt,
				"updated_at":      msg.CreatedAt,
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to advance chat thread")
		}
		if result.RowsAffected == 0 {
			return repository.ErrChatNotFound
		}

		var threadM model.ChatThreadModel
		if err := tx.Select("message_count").Where("id = ?", threadID).First(&threadM).Error; err != nil {
			return errors.Wrap(err, "failed to read chat thread counter")
		}
		msg.Seq = threadM.MessageCount

		if err := tx.Create(&model.ChatMessageModel{
			ID:              msg.ID,
			ThreadID:        threadID,
			Seq:             msg.Seq,
			SenderAccountID: msg.SenderAccountID,
			SenderRole:      msg.SenderRole.String(),
			Text:            msg.Text,
			CreatedAt:       msg.CreatedAt,
		}).Error; err != nil {
			return errors.Wrap(err, "failed to append chat message")
		}

		return nil
	})
}

// MarkRead sets the last-read marker of the given side.
func (repo *chatRepository) MarkRead(ctx context.Context, threadID uuid.UUID, side entity.Role, at time.Time) error {
	var column string
	switch side {
	case entity.RoleRestaurant:
		column = "last_read_by_restaurant"
	case entity.RoleNGO:
		column = "last_read_by_ngo"
	default:
		return errors.Wrapf(entity.ErrInvalidRole, "role %q", side)
	}

	result := repo.db.WithContext(ctx).
		Model(&model.ChatThreadModel{}).
		Where("id = ?", threadID).
		Updates(map[string]any{
			column:       at.UTC(),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark chat thread read")
	}

	if result.RowsAffected == 0 {
		return repository.ErrChatNotFound
	}

	return nil
}

// DeleteThreads removes threads and their messages.
func (repo *chatRepository) DeleteThreads(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id IN ?", ids).Delete(&model.ChatMessageModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete chat messages")
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.ChatThreadModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete chat threads")
		}

		return nil
	})
}

func (repo *chatRepository) withMessages(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	})
}

// --- Mapper Functions ---

func toChatThreadDomain(data *model.ChatThreadModel) *entity.ChatThread {
	if data == nil {
		return nil
	}

	messages := make([]*entity.ChatMessage, 0, len(data.Messages))
	for i := range data.Messages {
		messages = append(messages, toChatMessageDomain(&data.Messages[i]))
	}

	return &entity.ChatThread{
		ID:                   data.ID,
		RestaurantID:         data.RestaurantID,
		NGOID:                data.NGOID,
		RestaurantAccountID:  data.RestaurantAccountID,
		NGOAccountID:         data.NGOAccountID,
		Messages:             messages,
		LastMessageAt:        data.LastMessageAt,
		LastReadByRestaurant: data.LastReadByRestaurant,
		LastReadByNGO:        data.LastReadByNGO,
		CreatedAt:            data.CreatedAt,
	}
}

func toChatMessageDomain(data *model.ChatMessageModel) *entity.ChatMessage {
	return &entity.ChatMessage{
		ID:              data.ID,
		ThreadID:        data.ThreadID,
		Seq:             data.Seq,
		SenderAccountID: data.SenderAccountID,
		SenderRole:      entity.Role(data.SenderRole),
		Text:            data.Text,
		CreatedAt:       data.CreatedAt,
	}
}
