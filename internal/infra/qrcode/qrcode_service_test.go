package qrcode

import (
	"encoding/json"
	"testing"

	"foodbridge/config"
	"foodbridge/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePass() *service.PickupPass {
	return &service.PickupPass{
		DonationID:      uuid.New(),
		RestaurantID:    uuid.New(),
		NGOID:           uuid.New(),
		PickupLocation:  "Back door, 1 Main St",
		PreferredOption: "NGO Pickup",
	}
}

func assertPNG(t *testing.T, data []byte) {
	t.Helper()

	require.GreaterOrEqual(t, len(data), 4)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, data[:4])
}

func TestQRCodeService_GeneratePickupQR(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		level string
	}{
		{"Low error correction", 128, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 512, "H"},
		{"Unknown level and size fall back", 0, "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := NewQRCodeService(tt.size, tt.level).GeneratePickupQR(samplePass())
			require.NoError(t, err)
			assertPNG(t, png)
		})
	}
}

func TestQRCodeService_GeneratePickupQRRequiresDonation(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	_, err := svc.GeneratePickupQR(nil)
	assert.Error(t, err)

	_, err = svc.GeneratePickupQR(&service.PickupPass{})
	assert.Error(t, err)
}

func TestQRCodeService_ParsePickupQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")
	pass := samplePass()

	raw, err := json.Marshal(qrPayload{Type: pickupType, PickupPass: *pass})
	require.NoError(t, err)

	parsed, err := svc.ParsePickupQR(string(raw))
	require.NoError(t, err)
	assert.Equal(t, pass, parsed)
}

func TestQRCodeService_ParsePickupQRInvalid(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"wrong type", `{"type":"subscription","donation_id":"` + uuid.NewString() + `"}`},
		{"missing donation", `{"type":"pickup"}`},
		{"bad uuid", `{"type":"pickup","donation_id":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParsePickupQR(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	png, err := NewFromConfig(&config.Config{}).GeneratePickupQR(samplePass())
	require.NoError(t, err)
	assertPNG(t, png)

	png, err = NewFromConfig(&config.Config{QRCode: &config.QRCodeConfig{Size: 300, ErrorCorrectionLevel: "H"}}).GeneratePickupQR(samplePass())
	require.NoError(t, err)
	assertPNG(t, png)
}
