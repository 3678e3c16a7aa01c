package handlers

import (
	"ble-locate/internal/models"
	"ble-locate/internal/mq"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"time"
)

type MeasurementSubmitter interface {
	Submit(ctx context.Context, event *models.MeasurementEvent) error
}

type MeasurementHandler struct {
	submitter    MeasurementSubmitter
	logger       zerolog.Logger
	handlerTopic string
	topicManager *mq.TopicManager
	source       string
	now          func() time.Time
}

func NewMeasurementHandler(
	submitter MeasurementSubmitter,
	logger zerolog.Logger,
	topicManager *mq.TopicManager,
	source string,
) *MeasurementHandler {
	return &MeasurementHandler{
		submitter:    submitter,
		logger:       logger,
		handlerTopic: topicManager.GetMeasurementTopic(),
		topicManager: topicManager,
		source:       source,
		now:          time.Now,
	}
}

func (h *MeasurementHandler) Topic() string {
	return h.handlerTopic
}

func (h *MeasurementHandler) TransformMessage(ctx context.Context, msg mqtt.Message) (*mq.MeasurementMessage, error) {
	if msg == nil {
		return nil, fmt.Errorf("received nil message: %w", ErrMessageIsNil)
	}

	topic := msg.Topic()
	payload := msg.Payload()

	if len(payload) == 0 {
		return nil, ErrEmptyMessage
	}

	var measurementMessage mq.MeasurementMessage
	if err := json.Unmarshal(payload, &measurementMessage); err != nil {
		return nil, fmt.Errorf("could not parse measurement data: %w: %v", ErrInvalidMessage, err)
	}

	measurementMessage.Topic = topic

	if measurementMessage.Source == h.source {
		return nil, ErrOwnMessage
	}

	if measurementMessage.Source == "" {
		if anchorID, err := h.topicManager.ExtractAnchorId(topic); err == nil {
			measurementMessage.Source = anchorID
		}
	}

	if measurementMessage.Data.Timestamp.IsZero() {
		measurementMessage.Data.Timestamp = h.now()
	}

	if err := measurementMessage.Data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return &measurementMessage, nil
}

func (h *MeasurementHandler) HandleMessage(client mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	measurementMessage, err := h.TransformMessage(ctx, msg)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrOwnMessage) {
			return
		}

		event := h.logger.Error().Err(err)
		if msg != nil {
			event = event.Str("message", string(msg.Payload())).Str("topic", msg.Topic())
		}
		event.Msg("Failed to transform measurement message")
		return
	}

	if err := h.submitter.Submit(ctx, &measurementMessage.Data); err != nil {
		h.logger.Error().Err(err).
			Str("topic", measurementMessage.Topic).
			Str("device_id", measurementMessage.Data.DeviceID).
			Msg("Failed to queue measurement")
		return
	}

	h.logger.Debug().
		Str("topic", measurementMessage.Topic).
		Str("anchor", measurementMessage.Source).
		Str("device_id", measurementMessage.Data.DeviceID).
		Msg("Measurement queued")
}
