package mq

import (
	"ble-locate/internal/models"
	"context"
	"errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type published struct {
	topic string
	data  interface{}
}

type fakePublisher struct {
	messages []published
	err      error
}

func (f *fakePublisher) PublishJson(topic string, data interface{}) error {
	f.messages = append(f.messages, published{topic: topic, data: data})
	return f.err
}

func TestSinkPublishesPerDeviceTopics(t *testing.T) {
	publisher := &fakePublisher{}
	sink := NewSink(publisher, NewTopicManager("ble-locate", zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()

	observation := &models.RawObservationEvent{DeviceID: "tag-1", Distance: 2.5}
	prediction := &models.PredictionEvent{DeviceID: "tag-1"}
	require.NoError(t, sink.PublishObservation(ctx, observation))
	require.NoError(t, sink.PublishPrediction(ctx, prediction))

	require.Len(t, publisher.messages, 2)
	assert.Equal(t, "ble-locate/v1/observations/tag-1", publisher.messages[0].topic)
	assert.Same(t, observation, publisher.messages[0].data)
	assert.Equal(t, "ble-locate/v1/predictions/tag-1", publisher.messages[1].topic)
	assert.Same(t, prediction, publisher.messages[1].data)
}

func TestSinkReturnsPublishError(t *testing.T) {
	boom := errors.New("not connected")
	sink := NewSink(&fakePublisher{err: boom}, NewTopicManager("ble-locate", zerolog.Nop()), zerolog.Nop())

	err := sink.PublishPrediction(context.Background(), &models.PredictionEvent{DeviceID: "tag-1"})

	assert.ErrorIs(t, err, boom)
}
