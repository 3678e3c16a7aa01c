package viewer

import (
	"ble-locate/internal/models"
	"time"
)

const (
	EventDeviceData        = "device_data"
	EventRawDistancePoint  = "raw_distance_point"
	EventDevicePrediction  = "device_prediction"
	EventRequestDeviceData = "request_device_data"
)

// Envelope is the frame every websocket message is wrapped in.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type RawDistancePoint struct {
	DeviceID string     `json:"device_id"`
	Anchor   [2]float64 `json:"anchor"`
	Distance float64    `json:"distance"`
	Payload  string     `json:"payload"`
}

type DevicePrediction struct {
	DeviceID          string     `json:"device_id"`
	PredictedLocation [2]float64 `json:"predicted_location"`
	Payload           string     `json:"payload"`
	Timestamp         time.Time  `json:"timestamp"`
}

type DeviceData struct {
	Devices map[string]DevicePrediction `json:"devices"`
}

func newRawDistancePoint(e *models.RawObservationEvent) RawDistancePoint {
	return RawDistancePoint{
		DeviceID: e.DeviceID,
		Anchor:   e.Anchor.LatLng(),
		Distance: e.Distance,
		Payload:  e.Payload,
	}
}

func newDevicePrediction(e *models.PredictionEvent) DevicePrediction {
	return DevicePrediction{
		DeviceID:          e.DeviceID,
		PredictedLocation: e.EstimatedLocation.LatLng(),
		Payload:           e.Payload,
		Timestamp:         e.Timestamp,
	}
}
