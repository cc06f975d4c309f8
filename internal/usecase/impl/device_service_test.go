package impl

import (
	"context"
	"net/http"
	"testing"

	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceService_RegisterRefreshesKnownDevice(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	ngo := app.ngo(t, "shelter@example.org")

	first, err := app.devices.RegisterDevice(ctx, ngo.ID, &usecase.DeviceInfo{
		FCMToken: "token-1",
		DeviceID: "pixel-7",
		Platform: "android",
	})
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	again, err := app.devices.RegisterDevice(ctx, ngo.ID, &usecase.DeviceInfo{
		FCMToken: "token-2",
		DeviceID: "pixel-7",
		Platform: "android",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "token-2", again.FCMToken)

	devices, err := app.devices.GetDevices(ctx, ngo.ID)
	require.NoError(t, err)
	require.Len(t, devices, 1)
}

func TestDeviceService_OwnershipIsEnforced(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	owner := app.ngo(t, "shelter@example.org")
	other := app.restaurant(t, "kitchen@example.org")

	device, err := app.devices.RegisterDevice(ctx, owner.ID, &usecase.DeviceInfo{
		FCMToken: "token-1",
		DeviceID: "iphone",
		Platform: "ios",
	})
	require.NoError(t, err)

	err = app.devices.UpdateFCMToken(ctx, other.ID, device.ID, "stolen")
	requireAppError(t, err, http.StatusForbidden)

	err = app.devices.DeactivateDevice(ctx, other.ID, device.ID)
	requireAppError(t, err, http.StatusForbidden)

	err = app.devices.DeactivateDevice(ctx, owner.ID, uuid.New())
	requireAppError(t, err, http.StatusNotFound)

	require.NoError(t, app.devices.UpdateFCMToken(ctx, owner.ID, device.ID, "token-2"))
	require.NoError(t, app.devices.DeactivateDevice(ctx, owner.ID, device.ID))

	devices, err := app.devices.GetDevices(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, devices)
}
