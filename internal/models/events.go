package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Plausible received signal strength bounds in dBm.
const (
	MinRssi = -150.0
	MaxRssi = 50.0
)

// MeasurementEvent is one raw signal-strength sample as reported by an anchor.
// RawRssi and Anchor are pointers so that a missing field can be told apart from a zero value.
type MeasurementEvent struct {
	DeviceID  string            `json:"device_id"`
	Anchor    *AnchorCoordinate `json:"anchor"`
	RawRssi   *float64          `json:"raw_rssi"`
	Payload   string            `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

func (e *MeasurementEvent) Validate() error {
	if strings.TrimSpace(e.DeviceID) == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidMeasurement)
	}
	if e.Anchor == nil {
		return fmt.Errorf("%w: anchor is required", ErrInvalidMeasurement)
	}
	if err := e.Anchor.Validate(); err != nil {
		return err
	}
	if e.RawRssi == nil {
		return fmt.Errorf("%w: raw_rssi is required", ErrInvalidMeasurement)
	}
	if math.IsNaN(*e.RawRssi) || math.IsInf(*e.RawRssi, 0) {
		return fmt.Errorf("%w: raw_rssi must be finite", ErrInvalidMeasurement)
	}
	if *e.RawRssi < MinRssi || *e.RawRssi > MaxRssi {
		return fmt.Errorf("%w: raw_rssi %v outside [%v, %v] dBm", ErrInvalidMeasurement, *e.RawRssi, MinRssi, MaxRssi)
	}
	return nil
}

// RawObservationEvent carries one anchor's current measurement for a device.
type RawObservationEvent struct {
	ID        string           `json:"id"`
	DeviceID  string           `json:"device_id"`
	Anchor    AnchorCoordinate `json:"anchor"`
	Distance  float64          `json:"distance"`
	Rssi      float64          `json:"rssi"`
	Variance  float64          `json:"variance"`
	Payload   string           `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

// PredictionEvent is the outcome of one solve for a device.
type PredictionEvent struct {
	ID                  string             `json:"id"`
	DeviceID            string             `json:"device_id"`
	EstimatedLocation   AnchorCoordinate   `json:"estimated_location"`
	ContributingAnchors []AnchorCoordinate `json:"contributing_anchors"`
	Payload             string             `json:"payload"`
	Method              string             `json:"method"`
	Iterations          int                `json:"iterations"`
	Converged           bool               `json:"converged"`
	Timestamp           time.Time          `json:"timestamp"`
}

func (p *PredictionEvent) ToInfluxTags() map[string]string {
	return map[string]string{
		"device_id": p.DeviceID,
		"method":    p.Method,
	}
}

func (p *PredictionEvent) ToInfluxFields() map[string]interface{} {
	return map[string]interface{}{
		"lat":        p.EstimatedLocation.Lat,
		"lon":        p.EstimatedLocation.Lon,
		"anchors":    len(p.ContributingAnchors),
		"iterations": p.Iterations,
		"converged":  p.Converged,
	}
}
