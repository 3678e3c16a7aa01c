package influx

import (
	"ble-locate/internal/models"
	"context"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

// fakeWriteAPI records points; embedding the interface leaves the other methods unimplemented.
type fakeWriteAPI struct {
	api.WriteAPI
	points []*write.Point
}

func (f *fakeWriteAPI) WritePoint(point *write.Point) {
	f.points = append(f.points, point)
}

func tagMap(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, tag := range p.TagList() {
		out[tag.Key] = tag.Value
	}
	return out
}

func fieldMap(p *write.Point) map[string]interface{} {
	out := make(map[string]interface{})
	for _, field := range p.FieldList() {
		out[field.Key] = field.Value
	}
	return out
}

func TestPublishObservationWritesPoint(t *testing.T) {
	writeAPI := &fakeWriteAPI{}
	writer := NewObservationWriter(writeAPI, zerolog.Nop())
	now := time.Now()

	err := writer.PublishObservation(context.Background(), &models.RawObservationEvent{
		DeviceID:  "tag-1",
		Anchor:    models.AnchorCoordinate{Lat: 12.5, Lon: 76.25},
		Distance:  2.56,
		Rssi:      -70,
		Variance:  4,
		Timestamp: now,
	})

	require.NoError(t, err)
	require.Len(t, writeAPI.points, 1)
	point := writeAPI.points[0]
	assert.Equal(t, RawObservationMeasurement, point.Name())
	assert.Equal(t, now, point.Time())
	assert.Equal(t, map[string]string{"device_id": "tag-1", "anchor": "12.5000000,76.2500000"}, tagMap(point))
	fields := fieldMap(point)
	assert.Equal(t, 2.56, fields["distance"])
	assert.Equal(t, -70.0, fields["rssi"])
	assert.Equal(t, 4.0, fields["variance"])
}

func TestPublishPredictionWritesPoint(t *testing.T) {
	writeAPI := &fakeWriteAPI{}
	writer := NewObservationWriter(writeAPI, zerolog.Nop())

	err := writer.PublishPrediction(context.Background(), &models.PredictionEvent{
		DeviceID:            "tag-1",
		EstimatedLocation:   models.AnchorCoordinate{Lat: 1.5, Lon: 2.5},
		ContributingAnchors: make([]models.AnchorCoordinate, 3),
		Method:              "wnls",
		Iterations:          4,
		Converged:           true,
		Timestamp:           time.Now(),
	})

	require.NoError(t, err)
	require.Len(t, writeAPI.points, 1)
	point := writeAPI.points[0]
	assert.Equal(t, PredictionMeasurement, point.Name())
	assert.Equal(t, map[string]string{"device_id": "tag-1", "method": "wnls"}, tagMap(point))
	fields := fieldMap(point)
	assert.Equal(t, 1.5, fields["lat"])
	assert.Equal(t, 2.5, fields["lon"])
	assert.Equal(t, int64(3), fields["anchors"])
	assert.Equal(t, int64(4), fields["iterations"])
	assert.Equal(t, true, fields["converged"])
}
