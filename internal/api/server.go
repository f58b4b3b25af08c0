package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientdesk/docs"
	"github.com/martijn/clientdesk/internal/api/handler"
	"github.com/martijn/clientdesk/internal/api/middleware"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/service"
	"github.com/martijn/clientdesk/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new API server. Metrics are registered with registry
// and served on /metrics.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	clientService service.ClientUseCase,
	authService *service.AuthService,
	registry *prometheus.Registry,
) *Server {
	// Set Gin mode
	if !cfg.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.Use(middleware.NewHTTPMetrics(registry).Middleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientService, logger)

	// Without require_auth every route is open and scopes are not checked
	var protected []gin.HandlerFunc
	requireScope := func(scope domain.Scope) gin.HandlerFunc {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.RequireAuth {
		protected = append(protected, middleware.AuthMiddleware(authService, logger))
		requireScope = func(scope domain.Scope) gin.HandlerFunc {
			return middleware.RequireScope(scope, logger)
		}
	}
	canRead := requireScope(domain.ScopeClientsRead)
	canWrite := requireScope(domain.ScopeClientsWrite)

	if cfg.AuthEnabled() {
		authHandler := handler.NewAuthHandler(authService, logger)
		credentialHandler := handler.NewCredentialHandler(authService, logger)

		// Public routes (no auth required)
		auth := router.Group("/auth")
		{
			auth.POST("/authorize", authHandler.Authorize)
			auth.POST("/token", authHandler.Token)
		}

		// Credentials
		credentials := router.Group("/credentials", append(protected, requireScope(domain.ScopeCredentialsManage))...)
		{
			credentials.POST("", credentialHandler.CreateCredential)
			credentials.GET("", credentialHandler.ListCredentials)
			credentials.GET("/:id", credentialHandler.GetCredential)
			credentials.PUT("/:id", credentialHandler.UpdateCredential)
			credentials.DELETE("/:id", credentialHandler.DeleteCredential)
		}
	}

	// Clients
	clients := router.Group("/clients", protected...)
	{
		clients.GET("", canRead, clientHandler.ListClients)
		clients.POST("", canWrite, clientHandler.CreateClient)
		clients.GET("/:id", canRead, clientHandler.GetClient)
		clients.PUT("/:id", canWrite, clientHandler.UpdateClient)
		clients.DELETE("/:id", canWrite, clientHandler.DeleteClient)
		clients.GET("/cpf/:cpf", canRead, clientHandler.GetClientByCPF)
		clients.GET("/email/:email", canRead, clientHandler.GetClientByEmail)
	}

	// Metrics and API docs
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	server := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	return server
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.logger.Info("starting HTTPS server", "addr", addr)
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	s.logger.Info("starting HTTP server", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
