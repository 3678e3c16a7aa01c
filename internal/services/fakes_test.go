package services

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"sync"
)

type recordingSink struct {
	mu           sync.Mutex
	name         string
	err          error
	observations []*models.RawObservationEvent
	predictions  []*models.PredictionEvent
}

func (r *recordingSink) Name() string {
	if r.name == "" {
		return "recording"
	}
	return r.name
}

func (r *recordingSink) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, event)
	return r.err
}

func (r *recordingSink) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, event)
	return r.err
}

func (r *recordingSink) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observations), len(r.predictions)
}

var errSinkDown = errors.New("sink down")

type fakeDeviceStore struct {
	devices []*models.Device
	err     error
}

func (f *fakeDeviceStore) UpsertPosition(ctx context.Context, device *models.Device) error {
	f.devices = append(f.devices, device)
	return f.err
}
