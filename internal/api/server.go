// Package api exposes the triage engine over HTTP and websocket. The
// REST surface covers triage, catalog browsing, history and stats; the
// websocket surface carries the conversational chat flow.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/cache"
	"github.com/respicare/triage-engine/internal/catalog"
	"github.com/respicare/triage-engine/internal/classifier"
	"github.com/respicare/triage-engine/internal/domain"
	"github.com/respicare/triage-engine/internal/middleware"
)

// Deps are the collaborators the server exposes. Cache and History may
// be nil when the deployment runs without them.
type Deps struct {
	Triager  domain.Triager
	Catalogs *catalog.Store
	Ensemble *classifier.Ensemble
	Cache    *cache.ResultCache
	History  domain.HistoryStore
}

// Server represents the HTTP server
type Server struct {
	cfg    domain.ServerConfig
	deps   Deps
	router *gin.Engine
	server *http.Server
	log    *logrus.Logger
}

// NewServer creates a new HTTP server instance
func NewServer(cfg domain.ServerConfig, deps Deps, logger *logrus.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AuditLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	if cfg.RateLimitEnable {
		router.Use(middleware.RateLimit(cfg.RequestsPerSec, cfg.RateBurst))
	}

	server := &Server{
		cfg:    cfg,
		deps:   deps,
		router: router,
		log:    logger,
	}

	server.setupRoutes()

	return server
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws/chat", s.handleChat)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/triage", s.handleTriage)
		v1.GET("/conditions", s.handleConditions)
		v1.GET("/conditions/:id", s.handleCondition)
		v1.POST("/catalog/reload", s.handleCatalogReload)
		v1.GET("/history", s.handleHistory)
		v1.GET("/stats", s.handleStats)
	}
}
