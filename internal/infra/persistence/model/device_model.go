package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDeviceModel maps 'user_devices': the FCM registrations of an account.
// (account_id, device_id) is unique among live rows, so re-registering after a
// delete creates a fresh row.
type UserDeviceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_devices_account_device,priority:1,where:deleted_at IS NULL"`
	DeviceID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_devices_account_device,priority:2,where:deleted_at IS NULL"`
	// Tokens are looked up when FCM reports them unregistered.
	FCMToken  string `gorm:"type:varchar(512);not null;index"`
	Platform  string `gorm:"type:varchar(16);not null"`
	IsActive  bool   `gorm:"not null;default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserDeviceModel) TableName() string {
	return "user_devices"
}
