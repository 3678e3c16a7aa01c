package models

import (
	"fmt"
	"time"
)

// Measurement is the latest known state reported by one anchor for one device.
type Measurement struct {
	Anchor    AnchorCoordinate `json:"anchor"`
	Distance  float64          `json:"distance"`
	Rssi      float64          `json:"rssi"`
	Variance  float64          `json:"variance"`
	Payload   string           `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

func (m *Measurement) ToInfluxTags(deviceID string) map[string]string {
	return map[string]string{
		"device_id": deviceID,
		"anchor":    m.Anchor.String(),
	}
}

func (m *Measurement) ToInfluxFields() map[string]interface{} {
	return map[string]interface{}{
		"distance": m.Distance,
		"rssi":     m.Rssi,
		"variance": m.Variance,
	}
}

func (m *Measurement) Validate() error {
	if err := m.Anchor.Validate(); err != nil {
		return err
	}
	if m.Variance <= 0 {
		return fmt.Errorf("%w: variance must be positive", ErrInvalidMeasurement)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidMeasurement)
	}
	return nil
}
