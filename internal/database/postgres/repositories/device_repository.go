package repositories

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"gorm.io/gorm"
	"time"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// UpsertPosition creates the device on first sight and otherwise moves its last known
// position forward. FirstSeen is never overwritten.
func (r *DeviceRepository) UpsertPosition(ctx context.Context, device *models.Device) error {
	if device.LastSeen.IsZero() {
		device.LastSeen = time.Now()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existingDevice models.Device
		result := tx.Where("device_id = ?", device.DeviceID).First(&existingDevice)

		switch {
		case result.Error == nil:
			return tx.Model(&existingDevice).Updates(map[string]interface{}{
				"payload":      device.Payload,
				"last_seen":    device.LastSeen,
				"last_lat":     device.LastLat,
				"last_lon":     device.LastLon,
				"anchor_count": device.AnchorCount,
			}).Error
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			device.FirstSeen = device.LastSeen
			return tx.Create(device).Error
		default:
			return result.Error
		}
	})
}

func (r *DeviceRepository) GetAllDevices(ctx context.Context) ([]*models.Device, error) {
	var devices []*models.Device
	err := r.db.WithContext(ctx).Order("device_id").Find(&devices).Error
	return devices, err
}
