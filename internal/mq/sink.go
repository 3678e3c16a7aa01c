package mq

import (
	"ble-locate/internal/models"
	"context"
	"github.com/rs/zerolog"
)

type Publisher interface {
	PublishJson(topic string, data interface{}) error
}

// Sink publishes observations and predictions to per-device topics.
type Sink struct {
	publisher    Publisher
	topicManager *TopicManager
	logger       zerolog.Logger
}

func NewSink(publisher Publisher, topicManager *TopicManager, logger zerolog.Logger) *Sink {
	return &Sink{
		publisher:    publisher,
		topicManager: topicManager,
		logger:       logger,
	}
}

func (s *Sink) Name() string {
	return "mqtt"
}

func (s *Sink) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	return s.publisher.PublishJson(s.topicManager.GetObservationTopic(event.DeviceID), event)
}

func (s *Sink) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	return s.publisher.PublishJson(s.topicManager.GetPredictionTopic(event.DeviceID), event)
}
