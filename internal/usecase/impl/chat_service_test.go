package impl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestedThread sets up a restaurant and an NGO whose request opened a chat thread.
func requestedThread(t *testing.T, app *testApp) (entity.RestaurantActor, entity.NGOActor, uuid.UUID) {
	t.Helper()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	donation := app.offer(t, restaurant, "5 trays", 2*time.Hour)

	_, err := app.donations.AsNGO(ngo).Request(context.Background(), donation.ID)
	require.NoError(t, err)

	threads, err := app.chats.ListThreads(context.Background(), ngo)
	require.NoError(t, err)
	require.Len(t, threads, 1)

	return restaurant, ngo, threads[0].Thread.ID
}

func TestChatService_RequestOpensOneThreadPerPair(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant, ngo, threadID := requestedThread(t, app)

	second := app.offer(t, restaurant, "2 boxes", time.Hour)
	_, err := app.donations.AsNGO(ngo).Request(ctx, second.ID)
	require.NoError(t, err)

	for _, actor := range []entity.Actor{restaurant, ngo} {
		threads, err := app.chats.ListThreads(ctx, actor)
		require.NoError(t, err)
		require.Len(t, threads, 1)
		assert.Equal(t, threadID, threads[0].Thread.ID)
		require.NotNil(t, threads[0].Restaurant)
		require.NotNil(t, threads[0].NGO)
		assert.Equal(t, "Account kitchen@example.org", threads[0].Restaurant.Name)
		assert.Equal(t, "Account shelter@example.org", threads[0].NGO.Name)
	}
}

func TestChatService_AppendMessage(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant, ngo, threadID := requestedThread(t, app)

	_, err := app.chats.AppendMessage(ctx, ngo, threadID, "  We can be there at 6pm  ")
	require.NoError(t, err)
	app.advance(time.Minute)

	detail, err := app.chats.AppendMessage(ctx, restaurant, threadID, "Sounds good")
	require.NoError(t, err)

	messages := detail.Thread.Messages
	require.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].Seq)
	assert.Equal(t, "We can be there at 6pm", messages[0].Text)
	assert.Equal(t, entity.RoleNGO, messages[0].SenderRole)
	assert.Equal(t, ngo.ID, messages[0].SenderAccountID)
	assert.Equal(t, int64(2), messages[1].Seq)
	assert.Equal(t, entity.RoleRestaurant, messages[1].SenderRole)
	assert.True(t, detail.Thread.LastMessageAt.Equal(app.clock))

	_, err = app.chats.AppendMessage(ctx, ngo, threadID, "   ")
	requireAppError(t, err, http.StatusBadRequest)

	_, err = app.chats.AppendMessage(ctx, ngo, uuid.New(), "hello")
	requireAppError(t, err, http.StatusNotFound)
}

func TestChatService_StrangersAreRejected(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, _, threadID := requestedThread(t, app)
	strangerNGO := app.ngo(t, "other-shelter@example.org")
	strangerRestaurant := app.restaurant(t, "other-kitchen@example.org")

	for _, actor := range []entity.Actor{strangerNGO, strangerRestaurant} {
		_, err := app.chats.GetThread(ctx, actor, threadID)
		requireAppError(t, err, http.StatusForbidden)

		_, err = app.chats.AppendMessage(ctx, actor, threadID, "hi")
		requireAppError(t, err, http.StatusForbidden)

		err = app.chats.MarkRead(ctx, actor, threadID)
		requireAppError(t, err, http.StatusForbidden)

		threads, err := app.chats.ListThreads(ctx, actor)
		require.NoError(t, err)
		assert.Empty(t, threads)
	}
}

func TestChatService_MarkRead(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant, ngo, threadID := requestedThread(t, app)
	app.advance(5 * time.Minute)

	require.NoError(t, app.chats.MarkRead(ctx, restaurant, threadID))

	detail, err := app.chats.GetThread(ctx, ngo, threadID)
	require.NoError(t, err)
	require.NotNil(t, detail.Thread.LastReadByRestaurant)
	assert.True(t, detail.Thread.LastReadByRestaurant.Equal(app.clock))
	assert.Nil(t, detail.Thread.LastReadByNGO)

	err = app.chats.MarkRead(ctx, ngo, uuid.New())
	requireAppError(t, err, http.StatusNotFound)
}
