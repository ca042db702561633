package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/punkzieeee/demo-socketio/internal/config"
	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

// NewUpgrader configures the websocket upgrader from cfg.
func NewUpgrader(cfg *config.Config) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  64 * 1024, // 64 KB
		WriteBufferSize: 64 * 1024, // 64 KB
		Subprotocols:    signaling.Subprotocols,

		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
}

// ServeWs returns an http.HandlerFunc that handles websocket requests.
// It takes the hub as a dependency.
func ServeWs(hub *signaling.Hub, cfg *config.Config) http.HandlerFunc {
	upgrader := NewUpgrader(cfg)
	opts := signaling.ClientOptions{
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		MaxMessageSize: cfg.MaxMessageSize,
		SendBuffer:     cfg.SendBuffer,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Upgrade the HTTP connection to a WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := signaling.NewClient(hub, conn, opts)
		slog.Debug("websocket accepted", "conn", client.ID(), "remote", r.RemoteAddr,
			"subprotocol", conn.Subprotocol())

		// Serve blocks until the connection closes; the hub is told on exit.
		client.Serve(r.URL.Query())
	}
}

// HealthCheck reports liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// StatsHandler serves a JSON snapshot of the registries.
func StatsHandler(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Stats()); err != nil {
			slog.Warn("failed to write stats", "error", err)
		}
	}
}

// NewMux registers every route of the relay.
func NewMux(hub *signaling.Hub, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthCheck)
	mux.HandleFunc("GET /stats", StatsHandler(hub))
	mux.HandleFunc("GET "+cfg.Path, ServeWs(hub, cfg))
	return mux
}
