// Package http exposes the application services over a JSON API.
// Handlers only translate requests; every rule lives in the service layer.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/event-finance/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthFunc reports whether a dependency is usable
type HealthFunc func(ctx context.Context) error

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

// Services groups the application services the API serves
type Services struct {
	Events      service.EventService
	BudgetItems service.BudgetItemService
	Expenses    service.ExpenseService
	Summaries   service.SummaryService
	Exports     service.ExportService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	authorizer *service.Authorizer
	tokens     *TokenIssuer
	health     HealthFunc
	logger     Logger
}

// NewServer creates a new HTTP server. tokens may be nil when the
// authorizer runs in demo mode; health may be nil.
func NewServer(
	config ServerConfig,
	services Services,
	authorizer *service.Authorizer,
	tokens *TokenIssuer,
	health HealthFunc,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:     config,
		router:     gin.New(),
		services:   services,
		authorizer: authorizer,
		tokens:     tokens,
		health:     health,
		logger:     logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api", s.authMiddleware())
	{
		api.GET("/me/permissions", s.myPermissions)

		api.GET("/events", s.listEvents)
		api.POST("/events", s.createEvent)
		api.GET("/events/:id", s.getEvent)
		api.PATCH("/events/:id/status", s.updateEventStatus)
		api.GET("/events/:id/summary", s.eventSummary)

		api.GET("/events/:id/budget/export", s.exportBudget)
		api.GET("/events/:id/budget-items", s.listBudgetItems)
		api.POST("/events/:id/budget-items", s.createBudgetItem)
		api.GET("/events/:id/budget-items/:itemId", s.getBudgetItem)
		api.PATCH("/events/:id/budget-items/:itemId", s.updateBudgetItem)
		api.POST("/events/:id/budget-items/:itemId/delete-request", s.requestBudgetItemDelete)
		api.DELETE("/events/:id/budget-items/:itemId", s.confirmBudgetItemDelete)

		api.GET("/events/:id/expenses", s.listExpenses)
		api.POST("/events/:id/expenses", s.createExpense)
		api.GET("/events/:id/expenses/:expenseId", s.getExpense)
		api.PATCH("/events/:id/expenses/:expenseId", s.updateExpense)
		api.POST("/events/:id/expenses/:expenseId/approve", s.approveExpense)
		api.POST("/events/:id/expenses/:expenseId/reject", s.rejectExpense)
		api.GET("/events/:id/expenses/:expenseId/history", s.expenseHistory)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

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

	s.logger.Info("Stopping HTTP server")

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

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
