// Package server exposes the renderer over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/taigrr/meshsvg/internal/config"
	"github.com/taigrr/meshsvg/pkg/models"
)

const maxBodySize = 32 << 20 // 32MB

// Server renders meshes posted as JSON and, when started with a mesh,
// streams turntable frames of it over a websocket.
type Server struct {
	cfg    *config.Config
	mesh   *models.Mesh
	log    *slog.Logger
	router *mux.Router
}

// New creates a server. mesh may be nil, in which case /spin answers 404.
func New(cfg *config.Config, mesh *models.Mesh, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{cfg: cfg, mesh: mesh, log: log, router: mux.NewRouter()}

	s.router.Use(s.recovery)
	s.router.Use(requestID)
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/render", s.handleRender).Methods("POST")
	s.router.HandleFunc("/mesh.svg", s.handleMesh).Methods("GET")
	s.router.HandleFunc("/spin", s.handleSpin).Methods("GET")
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown", "error", err)
		}
	}()

	s.log.Info("server starting", "addr", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
