package mq

import (
	"ble-locate/internal/models"
)

// Message is the envelope every payload on the bus travels in.
type Message struct {
	Data   interface{} `json:"data"`
	Source string      `json:"source"`
}

type MeasurementMessage struct {
	Data   models.MeasurementEvent `json:"data"`
	Source string                  `json:"source"`
	Topic  string                  `json:"-"`
}
