package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"big4-auction-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server serves the REST API, the pages and the websocket feed on one port
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     zerolog.Logger
}

type ServerParams struct {
	Config    *config.Config
	Services  Services
	WebSocket http.HandlerFunc
	Logger    zerolog.Logger
}

func NewServer(params ServerParams) *Server {
	if params.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := SetupRouter(RouterParams{
		Handler:   NewHandler(HandlerParams{Services: params.Services, Logger: params.Logger}),
		WebSocket: params.WebSocket,
		Logger:    params.Logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", params.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		config:     params.Config,
		logger:     params.Logger.With().Str("component", "http_server").Logger(),
	}
}

// Start blocks until the server stops
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
