package models

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidMeasurement = errors.New("invalid measurement")

// AnchorCoordinate is the fixed geographic position of a measuring point, in degrees.
// It is comparable and used as a map key, so two reports from the same anchor must
// carry identical coordinates.
type AnchorCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (a AnchorCoordinate) Validate() error {
	if math.IsNaN(a.Lat) || math.IsInf(a.Lat, 0) || a.Lat < -90 || a.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidMeasurement, a.Lat)
	}
	if math.IsNaN(a.Lon) || math.IsInf(a.Lon, 0) || a.Lon < -180 || a.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidMeasurement, a.Lon)
	}
	return nil
}

func (a AnchorCoordinate) LatLng() [2]float64 {
	return [2]float64{a.Lat, a.Lon}
}

func (a AnchorCoordinate) String() string {
	return fmt.Sprintf("%.7f,%.7f", a.Lat, a.Lon)
}
