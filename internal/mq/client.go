package mq

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/interfaces"
	"context"
	"encoding/json"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"sync/atomic"
	"time"
)

type MessageOptions struct {
	Qos      byte          `json:"qos"`
	Retained bool          `json:"retained"`
	Timeout  time.Duration `json:"timeout"`
	Source   string        `json:"source"`
}

type Client struct {
	client    mqtt.Client
	config    components.MQTTConfigImpl
	logger    zerolog.Logger
	connected atomic.Bool
}

func NewClient(cfg components.MQTTConfigImpl, logger zerolog.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()

	opts.AddBroker(cfg.GetUrl())
	// a unique suffix keeps several instances from kicking each other off the broker
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])
	opts.SetClientID(clientID)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetCleanSession(cfg.CleanSession)

	mqttClient := &Client{
		config: cfg,
		logger: logger,
	}

	opts.SetOnConnectHandler(mqttClient.onConnect)
	opts.SetConnectionLostHandler(mqttClient.onConnectionLost)

	mqttClient.client = mqtt.NewClient(opts)

	logger.Debug().
		Str("broker", cfg.GetUrl()).
		Str("client_id", clientID).
		Msg("MQTT client created")

	return mqttClient, nil
}

func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("error connecting to MQTT broker: %w", token.Error())
		}
		c.connected.Store(true)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection to MQTT broker timed out: %w", ctx.Err())
	}
}

func (c *Client) Disconnect(ctx context.Context) {
	if !c.IsConnected() {
		c.logger.Warn().Msg("MQTT client is not connected, nothing to disconnect")
		return
	}

	c.client.Disconnect(250)

	select {
	case <-ctx.Done():
		c.logger.Warn().Msg("MQTT client disconnect timed out")
	default:
		c.connected.Store(false)
		c.logger.Info().Msg("MQTT client disconnected successfully")
	}
}

func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected, cannot subscribe to topic %s", topic)
	}

	token := c.client.Subscribe(topic, qos, handler)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("error subscribing to topic %s: %w", topic, token.Error())
	}

	c.logger.Info().Str("topic", topic).Msg("Added topic subscription")

	return nil
}

func (c *Client) Unsubscribe(topics ...string) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected, cannot unsubscribe")
	}

	token := c.client.Unsubscribe(topics...)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("unsubscribe from %v timed out", topics)
	}
	return token.Error()
}

func (c *Client) PublishWithOptions(topic string, payload []byte, options *MessageOptions) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Publish(topic, options.Qos, options.Retained, payload)
	if !token.WaitTimeout(options.Timeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, options.Timeout)
	}

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.Debug().
		Str("topic", topic).
		Int("payload_size", len(payload)).
		Msg("successfully published message")

	return nil
}

// PublishJson wraps data in the shared message envelope stamped with this service's source.
func (c *Client) PublishJson(topic string, data interface{}) error {
	msgOptions := &MessageOptions{
		Qos:      c.config.QoS,
		Retained: false,
		Timeout:  5 * time.Second,
		Source:   c.config.Source,
	}

	payload, err := json.Marshal(Message{
		Data:   data,
		Source: msgOptions.Source,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return c.PublishWithOptions(topic, payload, msgOptions)
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client.IsConnected()
}

func (c *Client) onConnect(client mqtt.Client) {
	c.connected.Store(true)

	c.logger.Info().
		Msg("Successfully connected to broker")
}

func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	c.connected.Store(false)
	c.logger.Warn().Err(err).Msg("lost connection to broker")
}

var _ interfaces.IMqClient = (*Client)(nil)
