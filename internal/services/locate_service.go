package services

import (
	"ble-locate/internal/aggregator"
	"ble-locate/internal/config/components"
	"ble-locate/internal/models"
	"ble-locate/internal/solver"
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocateService records incoming samples and, once a device is heard by enough
// anchors, emits its raw observations and a fresh position prediction.
type LocateService struct {
	aggregator *aggregator.Aggregator
	solver     *solver.Solver
	sink       Sink
	threshold  int
	logger     zerolog.Logger
}

func NewLocateService(
	agg *aggregator.Aggregator,
	slv *solver.Solver,
	sink Sink,
	cfg components.PipelineConfigImpl,
	logger zerolog.Logger,
) *LocateService {
	return &LocateService{
		aggregator: agg,
		solver:     slv,
		sink:       sink,
		threshold:  cfg.SolveAnchorThreshold,
		logger:     logger,
	}
}

func (s *LocateService) ProcessMeasurement(ctx context.Context, event *models.MeasurementEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	set, err := s.aggregator.Record(event.DeviceID, *event.Anchor, *event.RawRssi, event.Payload, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record measurement: %w", err)
	}

	s.logger.Debug().
		Str("device_id", event.DeviceID).
		Str("anchor", event.Anchor.String()).
		Int("anchors", len(set)).
		Msg("Measurement recorded")

	if len(set) < s.threshold {
		return nil
	}

	observations := make([]solver.AnchorDistance, 0, len(set))
	for i := range set {
		m := set[i]
		observation := &models.RawObservationEvent{
			ID:        uuid.NewString(),
			DeviceID:  event.DeviceID,
			Anchor:    m.Anchor,
			Distance:  m.Distance,
			Rssi:      m.Rssi,
			Variance:  m.Variance,
			Payload:   m.Payload,
			Timestamp: m.Timestamp,
		}
		if err := s.sink.PublishObservation(ctx, observation); err != nil {
			s.logger.Warn().Err(err).
				Str("device_id", event.DeviceID).
				Str("anchor", m.Anchor.String()).
				Msg("Observation was not delivered to every sink")
		}

		observations = append(observations, solver.AnchorDistance{
			Anchor:   m.Anchor,
			Distance: m.Distance,
			Variance: m.Variance,
		})
	}

	result, err := s.solver.Solve(observations)
	if err != nil {
		return fmt.Errorf("failed to solve position for %s: %w", event.DeviceID, err)
	}

	contributing := make([]models.AnchorCoordinate, len(set))
	for i, m := range set {
		contributing[i] = m.Anchor
	}

	prediction := &models.PredictionEvent{
		ID:                  uuid.NewString(),
		DeviceID:            event.DeviceID,
		EstimatedLocation:   result.Location,
		ContributingAnchors: contributing,
		Payload:             event.Payload,
		Method:              string(result.Method),
		Iterations:          result.Iterations,
		Converged:           result.Converged,
		Timestamp:           event.Timestamp,
	}
	if err := s.sink.PublishPrediction(ctx, prediction); err != nil {
		s.logger.Warn().Err(err).
			Str("device_id", event.DeviceID).
			Msg("Prediction was not delivered to every sink")
	}

	s.logger.Info().
		Str("device_id", event.DeviceID).
		Float64("lat", result.Location.Lat).
		Float64("lon", result.Location.Lon).
		Int("anchors", len(set)).
		Int("iterations", result.Iterations).
		Bool("converged", result.Converged).
		Msg("Position predicted")

	return nil
}
