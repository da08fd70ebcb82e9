// Package http provides the HTTP adapter over the application layer.
// Handlers stay thin: they validate input, call a repository or service,
// and dispatch domain events for the workflow engine to react to.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/config"
)

// Server is the HTTP server adapter
type Server struct {
	config     config.ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server around the given handlers
func NewServer(cfg config.ServerConfig, handlers *Handlers, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   cfg,
		router:   gin.New(),
		handlers: handlers,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/inquiries", s.handlers.CreateInquiry)
		api.GET("/inquiries", s.handlers.ListInquiries)
		api.POST("/inquiries/:id/convert", s.handlers.ConvertInquiry)

		api.POST("/clients", s.handlers.CreateClient)
		api.GET("/clients", s.handlers.ListClients)
		api.GET("/clients/:id", s.handlers.GetClient)
		api.PUT("/clients/:id", s.handlers.UpdateClient)
		api.DELETE("/clients/:id", s.handlers.DeleteClient)
		api.GET("/clients/:id/projects", s.handlers.ListClientProjects)
		api.GET("/clients/:id/communications", s.handlers.ListClientCommunications)

		api.POST("/projects", s.handlers.CreateProject)
		api.GET("/projects", s.handlers.ListProjects)
		api.GET("/projects/:id", s.handlers.GetProject)
		api.PATCH("/projects/:id/status", s.handlers.UpdateProjectStatus)
		api.GET("/projects/:id/milestones", s.handlers.ListProjectMilestones)
		api.GET("/projects/:id/files", s.handlers.ListProjectFiles)

		api.POST("/milestones/:id/complete", s.handlers.CompleteMilestone)

		api.POST("/invoices", s.handlers.CreateInvoice)
		api.GET("/invoices", s.handlers.ListInvoices)
		api.GET("/invoices/:id", s.handlers.GetInvoice)
		api.POST("/invoices/:id/send", s.handlers.SendInvoice)

		api.POST("/payments", s.handlers.CreatePayment)
		api.POST("/files", s.handlers.CreateFile)

		api.GET("/notifications", s.handlers.ListNotifications)
		api.POST("/notifications/:id/read", s.handlers.MarkNotificationRead)

		api.GET("/packages", s.handlers.ListPackages)
		api.GET("/reports/invoices.xlsx", s.handlers.ExportInvoices)
	}
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
