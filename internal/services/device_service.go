package services

import (
	"ble-locate/internal/models"
	"context"
	"fmt"
	"github.com/rs/zerolog"
)

type DeviceStore interface {
	UpsertPosition(ctx context.Context, device *models.Device) error
}

// DeviceService keeps the device registry current with the latest prediction.
type DeviceService struct {
	deviceRepository DeviceStore
	logger           zerolog.Logger
}

func NewDeviceService(deviceRepo DeviceStore, logger zerolog.Logger) *DeviceService {
	return &DeviceService{
		deviceRepository: deviceRepo,
		logger:           logger,
	}
}

func (s *DeviceService) Name() string {
	return "postgres"
}

func (s *DeviceService) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	return nil
}

func (s *DeviceService) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	device := models.DeviceFromPrediction(event)
	if err := s.deviceRepository.UpsertPosition(ctx, device); err != nil {
		return fmt.Errorf("error creating or updating device: %w", err)
	}

	s.logger.Debug().
		Str("device_id", event.DeviceID).
		Int("anchor_count", device.AnchorCount).
		Msg("Device position stored")
	return nil
}

var _ Sink = (*DeviceService)(nil)
