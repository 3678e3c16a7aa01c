package viewer

import (
	"ble-locate/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"net/http"
	"sync"
	"time"
)

// PredictionSource provides the latest known prediction of every device.
type PredictionSource interface {
	All(ctx context.Context) ([]*models.PredictionEvent, error)
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans events out to every connected viewer. Slow viewers whose buffer fills up
// are disconnected instead of holding back the pipeline.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client

	upgrader     websocket.Upgrader
	predictions  PredictionSource
	sendBuffer   int
	writeTimeout time.Duration
	logger       zerolog.Logger
}

func NewHub(predictions PredictionSource, sendBuffer int, writeTimeout time.Duration, logger zerolog.Logger) *Hub {
	if sendBuffer < 1 {
		sendBuffer = 1
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		predictions:  predictions,
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (h *Hub) Name() string {
	return "viewer"
}

func (h *Hub) PublishObservation(ctx context.Context, event *models.RawObservationEvent) error {
	return h.Broadcast(EventRawDistancePoint, newRawDistancePoint(event))
}

func (h *Hub) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	return h.Broadcast(EventDevicePrediction, newDevicePrediction(event))
}

func (h *Hub) Broadcast(event string, data interface{}) error {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", event, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.logger.Warn().Str("client", id).Msg("Viewer is too slow, dropping connection")
			delete(h.clients, id)
			c.close()
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the viewer goes away.
// The first frame a viewer sees is the device_data snapshot.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
	}

	snapshot := h.snapshot(r.Context())

	h.mu.Lock()
	if snapshot != nil {
		c.send <- snapshot
	}
	h.clients[c.id] = c
	h.mu.Unlock()

	h.logger.Info().Str("client", c.id).Str("remote", r.RemoteAddr).Msg("Viewer connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) snapshot(ctx context.Context) []byte {
	data := DeviceData{Devices: make(map[string]DevicePrediction)}
	if h.predictions != nil {
		predictions, err := h.predictions.All(ctx)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to load cached predictions")
		}
		for _, p := range predictions {
			data.Devices[p.DeviceID] = newDevicePrediction(p)
		}
	}

	frame, err := json.Marshal(Envelope{Event: EventDeviceData, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal device snapshot")
		return nil
	}
	return frame
}

func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			continue
		}
		if envelope.Event != EventRequestDeviceData {
			continue
		}
		snapshot := h.snapshot(context.Background())
		if snapshot == nil {
			continue
		}
		h.mu.Lock()
		if _, ok := h.clients[c.id]; ok {
			select {
			case c.send <- snapshot:
			default:
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Debug().Err(err).Str("client", c.id).Msg("Viewer write failed")
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.logger.Info().Str("client", c.id).Msg("Viewer disconnected")
	}
	h.mu.Unlock()
	c.close()
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}
