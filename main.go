package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ndeen17/Escrow/config"
	"github.com/ndeen17/Escrow/handler"
	"github.com/ndeen17/Escrow/middleware"
	"github.com/ndeen17/Escrow/pkg/logger"
	"github.com/ndeen17/Escrow/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Pick the slot backend
	backend, err := newSlotBackend(cfg)
	if err != nil {
		slog.Error("failed to initialize slot backend", "backend", cfg.Slots.Backend, "error", err)
		os.Exit(1)
	}
	slog.Info("slot backend initialized", "backend", cfg.Slots.Backend, "ttl_hours", cfg.Slots.TTLHours)

	// Initialize services
	slots := service.NewSlotStore(backend, time.Duration(cfg.Slots.TTLHours)*time.Hour)
	wizard := service.NewWizardService(slots)
	escrow := service.NewEscrowClient(&cfg.Escrow)
	profiles := service.NewProfileStore(cfg.Profiles.MaxProfiles)
	reconciler := service.NewReconciler(slots, escrow, profiles)

	// Initialize handlers
	wizardHandler := handler.NewWizardHandler(wizard)
	gateHandler := handler.NewGateHandler(wizard, slots, escrow, &cfg.Identity)
	reconcileHandler := handler.NewReconcileHandler(reconciler)
	authHandler := handler.NewAuthHandler(profiles)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS for the SPA
	router.Use(middleware.Session())                   // Anonymous wizard session
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Wizard routes: available to anonymous and authenticated users alike
	api := router.Group("/api")
	api.Use(middleware.AuthOptional(&cfg.Auth))
	{
		api.GET("/wizard/categories", wizardHandler.Categories)
		api.GET("/wizard/draft", wizardHandler.GetDraft)
		api.POST("/wizard/draft", wizardHandler.SaveDraft)
		api.DELETE("/wizard/draft", wizardHandler.DiscardDraft)
		api.POST("/wizard/next", wizardHandler.Next)
		api.POST("/wizard/back", wizardHandler.Back)
		api.POST("/wizard/milestones", wizardHandler.Milestones)
		api.GET("/wizard/payout", wizardHandler.Payout)
		api.POST("/wizard/submit", gateHandler.Submit)
		api.POST("/gate/signin", gateHandler.SignIn)
		api.POST("/gate/signup", gateHandler.SignUp)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(&cfg.Auth))
	{
		protected.POST("/session/reconcile", reconcileHandler.Reconcile)
		protected.GET("/auth/me", authHandler.GetCurrentUser)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited")
}

// newSlotBackend constructs the configured durable storage for wizard slots.
func newSlotBackend(cfg *config.Config) (service.SlotBackend, error) {
	switch cfg.Slots.Backend {
	case config.BackendRedis:
		return service.NewRedisBackend(&cfg.Redis)
	case config.BackendMinio:
		backend, err := service.NewMinioBackend(&cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := backend.EnsureBucket(context.Background()); err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return service.NewMemoryBackend(), nil
	}
}

// corsMiddleware allows the separately deployed SPA to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
