package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/thebishalghosh/livonto-sub000/internal/config"
	"github.com/thebishalghosh/livonto-sub000/internal/database"
	"github.com/thebishalghosh/livonto-sub000/internal/handlers"
	"github.com/thebishalghosh/livonto-sub000/internal/middleware"
	"github.com/thebishalghosh/livonto-sub000/internal/services"
	"github.com/thebishalghosh/livonto-sub000/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Livonto Room Inventory Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize repositories
	configRepo := database.NewRoomConfigRepository(db)
	bookingRepo := database.NewBookingRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	reconService := services.NewReconciliationService(configRepo, bookingRepo, logger)
	lifecycleService := services.NewBookingLifecycleService(bookingRepo, configRepo, logger)
	syncService := services.NewConfigSyncService(configRepo, bookingRepo, reconService, logger)
	sweeperService := services.NewExpirySweeperService(bookingRepo, lifecycleService, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg.Admin, jwtService, logger)
	inventoryHandler := handlers.NewInventoryHandler(lifecycleService, reconService, syncService, sweeperService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))

		// Booking routes carry the opportunistic expiry sweep: there is no
		// scheduler, the sweep rides on admin traffic.
		bookings := protected.Group("/bookings")
		if cfg.Sweep.Enabled {
			bookings.Use(middleware.SweepTrigger(sweeperService, logger))
		}
		{
			bookings.POST("", inventoryHandler.CreateBooking)
			bookings.PATCH("/:id/status", inventoryHandler.TransitionBooking)
			bookings.DELETE("/:id", inventoryHandler.DeleteBooking)
		}

		// An explicit sweep is its own trigger; keep it off the
		// sweep-wrapped group so it runs once per request.
		protected.POST("/bookings/sweep", inventoryHandler.SweepExpiredBookings)

		configs := protected.Group("/room-configurations")
		{
			configs.POST("/:id/reconcile", inventoryHandler.ReconcileConfiguration)
			configs.PATCH("/:id/override", inventoryHandler.SetManualOverride)
		}

		listings := protected.Group("/listings")
		{
			listings.PUT("/:id/room-configurations", inventoryHandler.SyncConfigurations)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
