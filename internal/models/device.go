package models

import (
	"time"

	"gorm.io/gorm"
)

// Device is the persisted registry entry of a located device.
type Device struct {
	gorm.Model
	DeviceID    string    `gorm:"uniqueIndex;not null" json:"device_id"`
	Payload     string    `json:"payload"`
	FirstSeen   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"first_seen"`
	LastSeen    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_seen"`
	LastLat     float64   `json:"last_lat"`
	LastLon     float64   `json:"last_lon"`
	AnchorCount int       `json:"anchor_count"`
}

func DeviceFromPrediction(p *PredictionEvent) *Device {
	return &Device{
		DeviceID:    p.DeviceID,
		Payload:     p.Payload,
		LastSeen:    p.Timestamp,
		LastLat:     p.EstimatedLocation.Lat,
		LastLon:     p.EstimatedLocation.Lon,
		AnchorCount: len(p.ContributingAnchors),
	}
}
