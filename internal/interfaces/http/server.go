// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
)

// Server is the HTTP server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	router     *gin.Engine
	httpServer *http.Server
	db         *postgres.Client
	redis      *redisdb.Client
}

// NewServer creates a new HTTP server with all middleware and routes
// wired up.
func NewServer(cfg *config.Config, logger *logrus.Logger, db *postgres.Client, redisClient *redisdb.Client, svc *routes.Services) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimit(redisClient, cfg))
	router.Use(middleware.Timeout(cfg.Server.ReadTimeout))

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		db:     db,
		redis:  redisClient,
	}

	router.GET("/health", server.healthCheck)
	routes.Setup(router, cfg, logger, svc)

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// healthCheck reports liveness of the server and its backing stores
func (s *Server) healthCheck(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"server": "ok"}

	if err := s.db.Health(); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.redis.Health(ctx); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["redis"] = "ok"
	}

	c.JSON(status, gin.H{
		"success": status == http.StatusOK,
		"message": "Health check",
		"data":    checks,
	})
}
