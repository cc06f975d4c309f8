// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
	// ErrDuplicateDevice means the account already registered this client device.
	ErrDuplicateDevice = errors.New("device already exists")
)

// DeviceRepository stores the push targets of donation lifecycle notifications.
// Deleted devices are kept as soft-deleted rows and never returned.
type DeviceRepository interface {
	CreateDevice(ctx context.Context, device *entity.UserDevice) error
	FindDeviceByID(ctx context.Context, id uuid.UUID) (*entity.UserDevice, error)

	// FindDevicesByAccount lists an account's devices, inactive ones included, newest first.
	FindDevicesByAccount(ctx context.Context, accountID uuid.UUID) ([]*entity.UserDevice, error)

	// FindActiveDevicesByAccounts returns the devices a notification for any of
	// accountIDs should be sent to.
	FindActiveDevicesByAccounts(ctx context.Context, accountIDs []uuid.UUID) ([]*entity.UserDevice, error)

	UpdateFCMToken(ctx context.Context, deviceID uuid.UUID, fcmToken string) error
	DeleteDevice(ctx context.Context, id uuid.UUID) error
}
