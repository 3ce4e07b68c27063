// Package api exposes the ingest HTTP server: the boundary through which
// the in-page sampling loop flushes memory readings into the tracker.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/specwatch/specwatch/pkg/config"
	"github.com/specwatch/specwatch/pkg/store"
	"github.com/specwatch/specwatch/pkg/tracker"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the ingest HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.ServerConfig
	tracker    tracker.Tracker
	store      store.Store
	httpServer *http.Server
}

// NewServer creates a new ingest server.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.ServerConfig,
	tr tracker.Tracker,
	st store.Store,
) Server {
	return &server{
		log:     log.WithField("component", "api"),
		cfg:     cfg,
		tracker: tr,
		store:   st,
	}
}

// Start builds the router and serves until the listener fails or Stop is
// called.
func (s *server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.WithField("listen", s.cfg.Listen).Info("Ingest server listening")

	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}

	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	s.log.Info("Ingest server stopped")

	return nil
}
