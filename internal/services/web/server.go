package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/snapshot"
	"github.com/ebriony/castlight/internal/storage"
)

// Config defines the inputs for the snapshot API server.
type Config struct {
	HTTPAddr string
}

// Server hosts the snapshot API HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer wires the snapshot API handlers into an HTTP server. The save
// service is optional: without it the server exposes the read surface only.
func NewServer(cfg Config, store storage.EntityStore, builder *snapshot.Builder, svc *service.Service) (*Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http address is required")
	}
	if store == nil {
		return nil, fmt.Errorf("entity store is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("snapshot builder is required")
	}

	h := &handler{store: store, builder: builder, svc: svc}
	return &Server{
		httpAddr: cfg.HTTPAddr,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           withLocale(h.routes()),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start serves HTTP until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("web listening on %s", s.httpAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return <-errCh
	}
}
