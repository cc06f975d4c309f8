package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/infra/persistence/model"
	"foodbridge/internal/infra/persistence/sqlitetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedThread(t *testing.T, db *gorm.DB) (*entity.ChatThread, *entity.RestaurantProfile, *entity.NGOProfile) {
	t.Helper()

	restaurant := seedRestaurant(t, db, uuid.NewString()+"@example.org")
	ngo := seedNGO(t, db, uuid.NewString()+"@example.org")

	thread, err := NewChatRepository(db).GetOrCreateThread(context.Background(), &entity.ChatThread{
		RestaurantID:        restaurant.ID,
		NGOID:               ngo.ID,
		RestaurantAccountID: restaurant.AccountID,
		NGOAccountID:        ngo.AccountID,
	})
	require.NoError(t, err)

	return thread, restaurant, ngo
}

func TestChatRepository_GetOrCreateThreadIsUniquePerPair(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewChatRepository(db)

	thread, restaurant, ngo := seedThread(t, db)
	assert.Empty(t, thread.Messages)

	again, err := repo.GetOrCreateThread(context.Background(), &entity.ChatThread{
		RestaurantID:        restaurant.ID,
		NGOID:               ngo.ID,
		RestaurantAccountID: restaurant.AccountID,
		NGOAccountID:        ngo.AccountID,
	})
	require.NoError(t, err)
	assert.Equal(t, thread.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&model.ChatThreadModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestChatRepository_AppendMessageKeepsOrder(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	thread, restaurant, ngo := seedThread(t, db)

	const writers = 5
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sender, role := restaurant.AccountID, entity.RoleRestaurant
			if i%2 == 1 {
				sender, role = ngo.AccountID, entity.RoleNGO
			}
			assert.NoError(t, repo.AppendMessage(ctx, thread.ID, &entity.ChatMessage{
				SenderAccountID: sender,
				SenderRole:      role,
				Text:            "hello",
			}))
		}()
	}
	wg.Wait()

	got, err := repo.FindThreadByID(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, writers)
	for i, msg := range got.Messages {
		assert.Equal(t, int64(i+1), msg.Seq)
	}
	assert.False(t, got.LastMessageAt.Before(thread.LastMessageAt))
}

func TestChatRepository_AppendToMissingThread(t *testing.T) {
	db := sqlitetest.New(t)

	err := NewChatRepository(db).AppendMessage(context.Background(), uuid.New(), &entity.ChatMessage{
		SenderAccountID: uuid.New(),
		SenderRole:      entity.RoleNGO,
		Text:            "hi",
	})
	assert.ErrorIs(t, err, repository.ErrChatNotFound)
}

func TestChatRepository_MarkReadAndList(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	first, restaurant, _ := seedThread(t, db)
	second, err := repo.GetOrCreateThread(ctx, &entity.ChatThread{
		RestaurantID:        restaurant.ID,
		NGOID:               seedNGO(t, db, "late@example.org").ID,
		RestaurantAccountID: restaurant.AccountID,
		NGOAccountID:        uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.AppendMessage(ctx, first.ID, &entity.ChatMessage{
		SenderAccountID: restaurant.AccountID,
		SenderRole:      entity.RoleRestaurant,
		Text:            "bump",
		CreatedAt:       time.Now().Add(time.Minute),
	}))

	at := time.Now().UTC()
	require.NoError(t, repo.MarkRead(ctx, second.ID, entity.RoleRestaurant, at))
	assert.ErrorIs(t, repo.MarkRead(ctx, uuid.New(), entity.RoleNGO, at), repository.ErrChatNotFound)

	threads, err := repo.ListThreadsByAccount(ctx, entity.RoleRestaurant, restaurant.AccountID)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, first.ID, threads[0].ID)
	require.Len(t, threads[0].Messages, 1)
	assert.NotNil(t, threads[1].LastReadByRestaurant)
	assert.Nil(t, threads[1].LastReadByNGO)
}

func TestChatRepository_DeleteThreads(t *testing.T) {
	db := sqlitetest.New(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	thread, restaurant, _ := seedThread(t, db)
	require.NoError(t, repo.AppendMessage(ctx, thread.ID, &entity.ChatMessage{
		SenderAccountID: restaurant.AccountID,
		SenderRole:      entity.RoleRestaurant,
		Text:            "bye",
	}))

	require.NoError(t, repo.DeleteThreads(ctx, []uuid.UUID{thread.ID}))

	_, err := repo.FindThreadByID(ctx, thread.ID)
	assert.ErrorIs(t, err, repository.ErrChatNotFound)

	var messages int64
	require.NoError(t, db.Model(&model.ChatMessageModel{}).Count(&messages).Error)
	assert.Zero(t, messages)
}
