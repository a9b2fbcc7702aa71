package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the catalog routes, request logging, metrics and health
// endpoints onto a fresh gin engine. db may be nil in tests that supply a
// different store; the health check then skips the database ping.
func NewRouter(store Store, db *Database, metrics *Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), metrics.Middleware())

	NewHealthHandler(db, time.Now()).RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())
	NewBookHandler(store, logger).RegisterRoutes(r.Group(""))
	return r
}

// Server is the catalogd HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New creates a Server serving handler on addr.
func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins serving HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
