package interfaces

import (
	"context"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type IMqClient interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
	PublishJson(topic string, data interface{}) error
	IsConnected() bool
}
