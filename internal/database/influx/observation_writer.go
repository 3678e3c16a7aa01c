package influx

import (
	"ble-locate/internal/models"
	"context"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
)

const (
	RawObservationMeasurement = "raw_observation"
	PredictionMeasurement     = "prediction"
)

// ObservationWriter records observations and predictions as time series points.
// Writes are batched by the non-blocking write API; failures surface on its error channel.
type ObservationWriter struct {
	writeAPI api.WriteAPI
	logger   zerolog.Logger
}

func NewObservationWriter(writeAPI api.WriteAPI, logger zerolog.Logger) *ObservationWriter {
	return &ObservationWriter{
		writeAPI: writeAPI,
		logger:   logger,
	}
}

func (w *ObservationWriter) Name() string {
	return "influxdb"
}

func (w *ObservationWriter) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	measurement := models.Measurement{
		Anchor:   event.Anchor,
		Distance: event.Distance,
		Rssi:     event.Rssi,
		Variance: event.Variance,
	}

	point := influxdb2.NewPoint(
		RawObservationMeasurement,
		measurement.ToInfluxTags(event.DeviceID),
		measurement.ToInfluxFields(),
		event.Timestamp,
	)
	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Str("device_id", event.DeviceID).
		Str("anchor", event.Anchor.String()).
		Float64("distance", event.Distance).
		Msg("Added raw observation to influxDB")

	return nil
}

func (w *ObservationWriter) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	point := influxdb2.NewPoint(
		PredictionMeasurement,
		event.ToInfluxTags(),
		event.ToInfluxFields(),
		event.Timestamp,
	)
	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Str("device_id", event.DeviceID).
		Msg("Added prediction to influxDB")

	return nil
}
