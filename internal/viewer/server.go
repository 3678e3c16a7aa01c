package viewer

import (
	"ble-locate/internal/config/components"
	"ble-locate/internal/models"
	"context"
	"encoding/json"
	"errors"
	"github.com/rs/zerolog"
	"net/http"
	"time"
)

// DeviceLister lists the device registry. It is optional.
type DeviceLister interface {
	GetAllDevices(ctx context.Context) ([]*models.Device, error)
}

type Server struct {
	hub     *Hub
	devices DeviceLister
	info    components.ServiceConfigImpl
	server  *http.Server
	logger  zerolog.Logger
}

func NewServer(cfg components.ViewerConfigImpl, info components.ServiceConfigImpl, hub *Hub, devices DeviceLister, logger zerolog.Logger) *Server {
	s := &Server{
		hub:     hub,
		devices: devices,
		info:    info,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/devices", s.handleDevices)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": s.info.Name,
		"version": s.info.Version,
		"viewers": s.hub.ClientCount(),
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.devices == nil {
		http.Error(w, "device registry is disabled", http.StatusNotFound)
		return
	}

	devices, err := s.devices.GetAllDevices(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices")
		http.Error(w, "failed to list devices", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Start serves in the background; listener errors other than a clean shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("Viewer listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Viewer server failed")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.server.Shutdown(ctx)
}
