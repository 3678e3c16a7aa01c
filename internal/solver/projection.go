package solver

import (
	"ble-locate/internal/models"
	"math"
)

const EarthRadius = 6371000.0

// Projection is a local equirectangular plane centred on the mean position of an anchor set.
// Distortion grows with the span of the set and towards the poles; it is meant for
// deployments a few kilometres across.
type Projection struct {
	lat0   float64
	lon0   float64
	cosLat float64
}

func NewProjection(anchors []models.AnchorCoordinate) Projection {
	var lat, lon float64
	for _, a := range anchors {
		lat += a.Lat
		lon += a.Lon
	}
	if n := float64(len(anchors)); n > 0 {
		lat /= n
		lon /= n
	}
	return Projection{lat0: lat, lon0: lon, cosLat: math.Cos(lat * math.Pi / 180)}
}

// Forward maps a coordinate to metres east and north of the projection centre.
func (p Projection) Forward(c models.AnchorCoordinate) Point {
	return Point{
		X: EarthRadius * (c.Lon - p.lon0) * math.Pi / 180 * p.cosLat,
		Y: EarthRadius * (c.Lat - p.lat0) * math.Pi / 180,
	}
}

// Inverse is the exact inverse of Forward.
func (p Projection) Inverse(pt Point) models.AnchorCoordinate {
	return models.AnchorCoordinate{
		Lat: p.lat0 + pt.Y/EarthRadius*180/math.Pi,
		Lon: p.lon0 + pt.X/(EarthRadius*p.cosLat)*180/math.Pi,
	}
}

type Point struct {
	X float64
	Y float64
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}
