package mq

import (
	"fmt"
	"github.com/rs/zerolog"
	"regexp"
	"strings"
)

type TopicManager struct {
	BaseTopic string
	logger    zerolog.Logger
}

func NewTopicManager(baseTopic string, logger zerolog.Logger) *TopicManager {
	return &TopicManager{
		BaseTopic: strings.TrimSuffix(baseTopic, "/"),
		logger:    logger,
	}
}

const (
	MeasurementTopicTemplate = "%s/v1/measurements/+"
	ObservationTopicTemplate = "%s/v1/observations/%s"
	PredictionTopicTemplate  = "%s/v1/predictions/%s"
)

func (m *TopicManager) GetMeasurementTopic() string {
	return fmt.Sprintf(MeasurementTopicTemplate, m.BaseTopic)
}

func (m *TopicManager) GetObservationTopic(deviceID string) string {
	return fmt.Sprintf(ObservationTopicTemplate, m.BaseTopic, deviceID)
}

func (m *TopicManager) GetPredictionTopic(deviceID string) string {
	return fmt.Sprintf(PredictionTopicTemplate, m.BaseTopic, deviceID)
}

func (m *TopicManager) buildTopicRegex(template string) *regexp.Regexp {
	pattern := strings.ReplaceAll(template, "%s", regexp.QuoteMeta(m.BaseTopic))
	pattern = strings.ReplaceAll(pattern, "+", "([^/]+)")
	pattern = "^" + pattern + "$"

	return regexp.MustCompile(pattern)
}

func (m *TopicManager) ExtractIdFromTopic(topic, template string) (string, error) {
	regex := m.buildTopicRegex(template)
	matches := regex.FindStringSubmatch(topic)

	if len(matches) < 2 {
		return "", fmt.Errorf("could not extract ID from topic: %s", topic)
	}

	return matches[1], nil
}

// ExtractAnchorId returns the anchor id segment of a measurement topic.
func (m *TopicManager) ExtractAnchorId(topic string) (string, error) {
	return m.ExtractIdFromTopic(topic, MeasurementTopicTemplate)
}

func (m *TopicManager) GetBaseTopic() string {
	return m.BaseTopic
}
