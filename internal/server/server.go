package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/punkzieeee/demo-socketio/internal/config"
	"github.com/punkzieeee/demo-socketio/internal/signaling"
)

const shutdownTimeout = 5 * time.Second

// Server runs the relay's HTTP endpoints.
type Server struct {
	cfg  *config.Config
	hub  *signaling.Hub
	http *http.Server
}

func New(cfg *config.Config, hub *signaling.Hub) *Server {
	return &Server{
		cfg: cfg,
		hub: hub,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewMux(hub, cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("signaling server listening", "addr", ln.Addr().String(), "path", s.cfg.Path)
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("signaling server stopped")
	return nil
}
