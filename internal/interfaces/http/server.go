// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter that translates HTTP requests to core operations;
// tenant id travels in the path and the actor id in a header, never in
// ambient state.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stokstak/procurement/internal/application/port"
	"github.com/stokstak/procurement/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config             ServerConfig
	httpServer         *http.Server
	router             *gin.Engine
	requestService     service.RequestService
	workflowService    service.WorkflowService
	itemService        service.ItemService
	fulfillmentService service.FulfillmentService
	roleOracle         port.RoleOracle
	logger             Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	requestService service.RequestService,
	workflowService service.WorkflowService,
	itemService service.ItemService,
	fulfillmentService service.FulfillmentService,
	roleOracle port.RoleOracle,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:             config,
		router:             router,
		requestService:     requestService,
		workflowService:    workflowService,
		itemService:        itemService,
		fulfillmentService: fulfillmentService,
		roleOracle:         roleOracle,
		logger:             logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(
		s.requestService,
		s.workflowService,
		s.itemService,
		s.fulfillmentService,
		s.roleOracle,
		s.logger,
	)

	s.router.GET("/health", handlers.HealthCheck)

	company := s.router.Group("/api/companies/:companyId")
	{
		company.POST("/requests", handlers.CreateRequest)
		company.GET("/requests", handlers.ListRequests)
		company.GET("/requests/:id", handlers.GetRequest)
		company.GET("/requests/:id/events", handlers.GetRequestEvents)
		company.POST("/requests/:id/transition", handlers.TransitionRequest)
		company.POST("/requests/:id/fulfill", handlers.FulfillRequest)
		company.POST("/items/:id/decision", handlers.DecideItem)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
