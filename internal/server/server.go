package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mutker/pimon/internal/errors"
	"codeberg.org/mutker/pimon/internal/logger"
	"codeberg.org/mutker/pimon/internal/metrics"
	"codeberg.org/mutker/pimon/internal/power"
	"codeberg.org/mutker/pimon/internal/stats"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// StatsProvider serves the latest stats snapshot
type StatsProvider interface {
	Snapshot(ctx context.Context) (stats.Snapshot, error)
}

// PowerProvider serves a fresh power snapshot
type PowerProvider interface {
	Snapshot(ctx context.Context) power.Snapshot
}

// Server is the thin transport shim over the aggregators: JSON endpoints for
// request/response and a WebSocket feed for push
type Server struct {
	stats        StatsProvider
	power        PowerProvider
	pushInterval time.Duration
	upgrader     websocket.Upgrader
}

func New(statsProvider StatsProvider, powerProvider PowerProvider, pushInterval time.Duration) *Server {
	return &Server{
		stats:        statsProvider,
		power:        powerProvider,
		pushInterval: pushInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/power", s.handlePower).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, "/api/stats", err)
		return
	}

	s.writeJSON(w, "/api/stats", snap)
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "/api/power", s.power.Snapshot(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, "/health", map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// statsMessage is the push feed frame
type statsMessage struct {
	Type  string         `json:"type"`
	Stats stats.Snapshot `json:"stats"`
}

// handleWebSocket pushes the latest stats snapshot on the refresh cadence
// until the client disconnects
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	for {
		snap, err := s.stats.Snapshot(r.Context())
		if err != nil {
			logger.ErrorWithCode(asDomainError(err)).Msg("stats refresh failed, closing feed")
			return
		}

		if err := conn.WriteJSON(statsMessage{Type: "stats", Stats: snap}); err != nil {
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to write response")
	}
	metrics.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(http.StatusOK)).Inc()
}

// writeError maps an aggregation fault to a service error; probe failures
// never reach this path
func (s *Server) writeError(w http.ResponseWriter, endpoint string, err error) {
	logger.ErrorWithCode(asDomainError(err)).Str("endpoint", endpoint).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	if encodeErr := json.NewEncoder(w).Encode(map[string]string{
		"error": string(errors.CodeOf(err)),
	}); encodeErr != nil {
		logger.Warn().Err(encodeErr).Str("endpoint", endpoint).Msg("failed to write error response")
	}
	metrics.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(http.StatusInternalServerError)).Inc()
}

func asDomainError(err error) errors.Error {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}

	return errors.Wrap(errors.ErrInternal, err)
}
