// Package http provides the HTTP server adapter for the application layer.
// It is a thin edge that translates requests into service calls and maps
// service errors onto the fixed status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/report"
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
	Debug        bool
	UploadDir    string
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     Logger
}

// NewServer creates a new HTTP server wiring all routes
func NewServer(
	config ServerConfig,
	authService service.AuthService,
	financingService service.FinancingService,
	notificationService service.NotificationService,
	auditService service.AuditTrailService,
	fileStore FileStore,
	exporter *report.ApplicationExporter,
	logger Logger,
) *Server {
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())
	router.Use(corsMiddleware())

	server.setupRoutes(authService, financingService, notificationService, auditService, fileStore, exporter)

	return server
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) setupRoutes(
	authService service.AuthService,
	financingService service.FinancingService,
	notificationService service.NotificationService,
	auditService service.AuditTrailService,
	fileStore FileStore,
	exporter *report.ApplicationExporter,
) {
	handlers := NewHandlers(financingService, auditService, fileStore, exporter, s.config.Debug, s.logger)
	authHandlers := NewAuthHandlers(authService, s.config.Debug, s.logger)
	notificationHandlers := NewNotificationHandlers(notificationService, s.config.Debug, s.logger)

	authenticate := Authenticate(authService)

	s.router.GET("/health", handlers.HealthCheck)
	s.router.Static("/uploads", s.config.UploadDir)

	auth := s.router.Group("/auth")
	{
		auth.POST("/login", authHandlers.Login)
	}

	app := s.router.Group("/application", authenticate)
	{
		app.POST("", Authorize("msme"), handlers.SubmitApplication)
		app.GET("", handlers.ListApplications)
		app.GET("/export", Authorize("admin"), handlers.ExportApplications)
		app.GET("/history/:applicationId", Authorize("admin"), handlers.TransitionHistory)
		app.GET("/getApplicationById/:applicationId", handlers.GetApplicationByID)
		app.POST("/approve/:applicationId", Authorize("admin"), handlers.RouteToLender)
		app.POST("/lender-approve/:applicationId", Authorize("lender"), handlers.LenderDecision)
		app.POST("/upload-invoice/:applicationId", Authorize("msme"), handlers.UploadInvoice)
		app.POST("/approve-invoice-buyer/:applicationId", Authorize("buyer"), handlers.BuyerDecision)
		app.POST("/fund-invoice/:applicationId", Authorize("lender"), handlers.FundInvoice)
		app.POST("/markAsRepaid/:applicationId", Authorize("msme"), handlers.MarkAsRepaid)
		app.POST("/closeApplication/:applicationId", Authorize("lender"), handlers.CloseApplication)
	}

	notification := s.router.Group("/notification", authenticate)
	{
		notification.GET("", notificationHandlers.List)
		notification.GET("/getNotificationsunread", notificationHandlers.UnreadCount)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

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
		s.logger.Error("HTTP server error", "error", err)
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
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
