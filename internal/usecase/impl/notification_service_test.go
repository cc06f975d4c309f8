package impl

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/infra/persistence/postgres"
	"foodbridge/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	mu       sync.Mutex
	messages []*service.PushMessage
	tokens   [][]string
	invalid  []string
	err      error
}

func (f *fakePusher) SendMulticast(_ context.Context, tokens []string, msg *service.PushMessage) (*service.PushResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.messages = append(f.messages, msg)
	f.tokens = append(f.tokens, tokens)

	return &service.PushResult{
		SuccessCount:  len(tokens) - len(f.invalid),
		FailureCount:  len(f.invalid),
		InvalidTokens: f.invalid,
	}, nil
}

func newNotificationService(app *testApp, pusher service.NotificationService) *notificationService {
	return NewNotificationService(NotificationServiceParams{
		DeviceRepo: postgres.NewDeviceRepository(app.db),
		Pusher:     pusher,
		Logger:     newDiscardLogger(),
	}).(*notificationService)
}

func TestNotificationService_DeliversLifecycleEvents(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	for _, token := range []string{"token-a", "token-b"} {
		_, err := app.devices.RegisterDevice(ctx, restaurant.ID, &usecase.DeviceInfo{FCMToken: token, DeviceID: token, Platform: "android"})
		require.NoError(t, err)
	}

	donation := app.offer(t, restaurant, "4 trays", time.Hour)
	_, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)
	require.Len(t, app.publisher.events, 1)

	pusher := &fakePusher{invalid: []string{"token-b"}}
	report, err := newNotificationService(app, pusher).DeliverDonationEvent(ctx, app.publisher.events[0])
	require.NoError(t, err)

	assert.Equal(t, 2, report.Devices)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Pruned)
	require.Len(t, pusher.messages, 1)
	assert.Equal(t, "New donation request", pusher.messages[0].Title)
	assert.Contains(t, pusher.messages[0].Body, "Rice (4 trays)")
	assert.Equal(t, donation.ID.String(), pusher.messages[0].Data["donation_id"])
	assert.ElementsMatch(t, []string{"token-a", "token-b"}, pusher.tokens[0])

	devices, err := app.devices.GetDevices(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "token-a", devices[0].FCMToken)
}

func TestNotificationService_EdgeCases(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ngo := app.ngo(t, "shelter@example.org")

	event := &service.DonationEvent{
		EventID:            "evt-1",
		Type:               service.EventDonationAccepted,
		FoodType:           "Soup",
		RecipientAccountID: ngo.ID.String(),
	}

	// No devices is not a failure.
	report, err := newNotificationService(app, &fakePusher{}).DeliverDonationEvent(ctx, event)
	require.NoError(t, err)
	assert.Zero(t, report.Devices)

	_, err = app.devices.RegisterDevice(ctx, ngo.ID, &usecase.DeviceInfo{FCMToken: "t", DeviceID: "d", Platform: "ios"})
	require.NoError(t, err)

	_, err = newNotificationService(app, &fakePusher{err: errors.New("fcm down")}).DeliverDonationEvent(ctx, event)
	require.Error(t, err)
	var appErr domainerrors.AppError
	assert.False(t, errors.As(err, &appErr))

	malformed := *event
	malformed.RecipientAccountID = "nobody"
	_, err = newNotificationService(app, &fakePusher{}).DeliverDonationEvent(ctx, &malformed)
	requireAppError(t, err, http.StatusBadRequest)

	unknown := *event
	unknown.Type = "donation.teleported"
	_, err = newNotificationService(app, &fakePusher{}).DeliverDonationEvent(ctx, &unknown)
	requireAppError(t, err, http.StatusBadRequest)
}
