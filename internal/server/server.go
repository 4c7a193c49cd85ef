// Package server is the browser-facing front end of the library system:
// it renders the pages, gates them by role, and forwards every data
// operation to the remote library API.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/authz"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/config"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/libclient"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/session"
)

var listFilterValues = map[string]bool{
	"all": true, "available": true, "not_available": true,
	"deleted": true, "not_deleted": true,
	"verified": true, "not_verified": true,
	"returned": true, "not_returned": true, "overdue": true,
}

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     zerolog.Logger
	validator  *validator.Validate
	resolver   *session.Resolver
	authorizer *authz.Authorizer
	api        *libclient.Client
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger) (*Server, error) {
	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("listfilter", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || listFilterValues[value]
	})

	// Initialize the remote API client
	api := libclient.New(cfg.API.BaseURL, cfg.Session.CookieName)

	// Initialize the session resolver; it is the single owner of session
	// state and is injected into everything that reads it.
	resolver := session.NewResolver(cfg.Session.CookieName, zlog)
	resolver.Subscribe(func(s session.State) {
		zlog.Debug().
			Bool("authenticated", s.Authenticated).
			Bool("is_admin", s.IsAdmin).
			Msg("Session state republished")
	})

	// Initialize the route authorizer with the API client as its
	// session validator
	authorizer := authz.New(api, authz.DefaultPaths(), zlog)

	server := &Server{
		config:     cfg,
		logger:     zlog,
		validator:  validate,
		resolver:   resolver,
		authorizer: authorizer,
		api:        api,
	}

	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.sessionMiddleware())
	s.router.Use(s.csrfMiddleware())

	// CORS middleware for the JSON endpoints page scripts call
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.LoadHTMLGlob(s.config.Server.TemplatesGlob)

	// Health check endpoint (no auth required)
	s.router.GET("/healthz", s.healthCheck)

	// Public pages
	s.router.GET("/", s.homePage)
	s.router.GET("/login", s.loginPage)
	s.router.POST("/login", s.login)
	s.router.GET("/logout", s.logout)
	s.router.GET("/register", s.registerPage)
	s.router.POST("/register", s.register)
	s.router.GET("/forgot-password", s.forgotPasswordPage)
	s.router.POST("/forgot-password", s.forgotPassword)
	s.router.GET("/reset-password", s.resetPasswordPage)
	s.router.POST("/reset-password", s.resetPassword)
	s.router.GET("/resend-verification", s.resendVerificationPage)
	s.router.POST("/resend-verification", s.resendVerification)

	// Session snapshot for page scripts
	s.router.GET("/api/session", s.sessionSnapshot)

	// User pages (authenticated, non-admin)
	userPages := s.router.Group("/")
	userPages.Use(s.requireRole(session.RoleUser))
	{
		userPages.GET("/dashboard", s.userDashboard)
		userPages.GET("/borrow-history", s.borrowHistoryPage)
		userPages.POST("/borrow", s.borrowBook)
		userPages.POST("/return", s.returnBook)
	}

	// Admin pages
	adminPages := s.router.Group("/admin")
	adminPages.Use(s.requireRole(session.RoleAdmin))
	{
		adminPages.GET("/dashboard", s.adminDashboard)
		adminPages.GET("/books", s.adminBooksPage)
		adminPages.POST("/books", s.addBook)
		adminPages.POST("/books/:id/update", s.updateBook)
		adminPages.POST("/books/:id/delete", s.deleteBook)
		adminPages.POST("/books/:id/restore", s.restoreBook)
		adminPages.GET("/users", s.adminUsersPage)
		adminPages.POST("/users", s.addUser)
		adminPages.POST("/users/:id/update", s.updateUser)
		adminPages.POST("/users/:id/delete", s.deleteUser)
		adminPages.GET("/borrow-records", s.borrowRecordsPage)
	}
}

// Router exposes the configured router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "library-frontend",
	})
}

// sessionSnapshot returns the session state derived from the request's
// cookie, re-resolved on every call so a login or logout in another tab is
// picked up no later than the next request from this one.
func (s *Server) sessionSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.resolver.Resolve(c.Request))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.ListenAddr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", s.config.Server.ListenAddr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
