// Package qrcode renders and reads pickup QR codes.
package qrcode

import (
	"encoding/json"

	"foodbridge/config"
	"foodbridge/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	pickupType  = "pickup"
	defaultSize = 256
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// qrPayload is the JSON encoded into the QR code.
type qrPayload struct {
	Type string `json:"type"`
	service.PickupPass
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// NewFromConfig builds the service from the qrcode config section, with defaults when it is absent.
func NewFromConfig(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return NewQRCodeService(defaultSize, "M")
	}

	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// GeneratePickupQR renders the pass as a PNG QR code
func (s *qrcodeService) GeneratePickupQR(pass *service.PickupPass) ([]byte, error) {
	if pass == nil || pass.DonationID == uuid.Nil {
		return nil, errors.New("pickup pass requires a donation ID")
	}

	jsonData, err := json.Marshal(qrPayload{Type: pickupType, PickupPass: *pass})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParsePickupQR parses scanned QR code text back into a pass
func (s *qrcodeService) ParsePickupQR(qrData string) (*service.PickupPass, error) {
	var data qrPayload
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal QR code data")
	}

	if data.Type != pickupType {
		return nil, errors.Errorf("invalid QR code type: %s", data.Type)
	}

	if data.DonationID == uuid.Nil {
		return nil, errors.New("QR code has no donation ID")
	}

	return &data.PickupPass, nil
}
