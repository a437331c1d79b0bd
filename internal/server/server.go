package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"StockSentinel/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Analysis is the subset of the scheduler the dashboard needs.
type Analysis interface {
	LastRun() *model.AnalysisRun
	RunAnalysis(ctx context.Context, trigger string) (*model.AnalysisRun, error)
}

// Server serves the read-only dashboard and the scan trigger.
type Server struct {
	analysis Analysis
	router   *http.ServeMux
	server   *http.Server
	logger   zerolog.Logger
}

// New creates a server listening on addr.
func New(addr string, analysis Analysis) *Server {
	s := &Server{
		analysis: analysis,
		logger:   log.With().Str("component", "server").Logger(),
	}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
