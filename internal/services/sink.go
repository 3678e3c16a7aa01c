package services

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
)

// Sink receives the events produced for a device once enough anchors report it.
type Sink interface {
	Name() string
	PublishObservation(ctx context.Context, event *models.RawObservationEvent) error
	PublishPrediction(ctx context.Context, event *models.PredictionEvent) error
}

// FanOut forwards every event to all of its sinks. A failing sink does not stop
// delivery to the others; the failures are logged and joined.
type FanOut struct {
	sinks  []Sink
	logger zerolog.Logger
}

func NewFanOut(logger zerolog.Logger, sinks ...Sink) *FanOut {
	return &FanOut{sinks: sinks, logger: logger}
}

func (f *FanOut) Add(sink Sink) {
	f.sinks = append(f.sinks, sink)
}

func (f *FanOut) Name() string {
	return "fanout"
}

func (f *FanOut) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishObservation(ctx, event); err != nil {
			f.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Str("device_id", event.DeviceID).
				Msg("Failed to publish observation")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *FanOut) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.PublishPrediction(ctx, event); err != nil {
			f.logger.Error().Err(err).
				Str("sink", sink.Name()).
				Str("device_id", event.DeviceID).
				Msg("Failed to publish prediction")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var _ Sink = (*FanOut)(nil)
