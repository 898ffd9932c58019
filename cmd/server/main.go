package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parley-chat/server/internal/api/handlers"
	"github.com/parley-chat/server/internal/api/middleware"
	"github.com/parley-chat/server/internal/config"
	"github.com/parley-chat/server/internal/crypto"
	"github.com/parley-chat/server/internal/database"
	"github.com/parley-chat/server/internal/registry"
	"github.com/parley-chat/server/internal/store"
	"github.com/parley-chat/server/internal/websocket"
	wshandlers "github.com/parley-chat/server/internal/websocket/handlers"
	"github.com/parley-chat/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Overrides{})
	if err != nil {
		logger.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	if cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}

	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Open database
	logger.Infof("Opening database: %s", cfg.DatabasePath)
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize JWT manager
	jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
	if err != nil {
		logger.Errorf("Failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	// The expiry registry is the only shared state across gateway nodes.
	// Without a Redis address the in-process registry serves single-node
	// deployments.
	var reg registry.Registry
	if cfg.RedisAddr != "" {
		logger.Infof("Using Redis expiry registry at %s", cfg.RedisAddr)
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Errorf("Failed to ping Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		reg = registry.NewRedisRegistry(redisClient, "", nil)
	} else {
		logger.Infof("Using in-process expiry registry")
		reg = registry.NewMemoryRegistry(nil)
	}

	// Wire the real-time layer
	queries := store.New(db.DB)
	groups := websocket.NewGroups()
	lifecycle := websocket.NewLifecycle("updates", jwtManager, reg, groups, cfg.EvictionMargin, nil)
	dispatcher := websocket.NewDispatcher(groups)
	offline := websocket.NewOfflineQueue(queries, nil, uuid.NewString)
	deps := wshandlers.NewDeps(queries, queries, queries, nil, uuid.NewString)

	socketIOServer := websocket.NewSocketIOServer(lifecycle, dispatcher, offline, deps)
	defer socketIOServer.Close()
	simpleServer := websocket.NewSimpleServer(lifecycle, dispatcher, offline, deps)

	// Background expiry sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go lifecycle.RunSweeper(sweepCtx, cfg.SweepInterval)

	// Create Gin router
	router := gin.Default()

	// CORS middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Logging middleware
	router.Use(middleware.LoggingMiddleware())

	// Root endpoint - returns plain text for client validation
	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to Parley Server!")
	})

	// Initialize handlers
	pushHandler := handlers.NewPushHandler(dispatcher, offline)
	notificationHandler := handlers.NewNotificationHandler(db.DB)
	roomHandler := handlers.NewRoomHandler(db.DB)

	// Protected routes (auth required)
	v1 := router.Group("/v1")
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		// Fan-out for trusted backend services
		protected.POST("/push", pushHandler.Push)

		// Queued notifications
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.POST("/notifications/seen", notificationHandler.MarkSeen)

		// Rooms
		protected.POST("/rooms", roomHandler.CreateRoom)
		protected.POST("/rooms/:id/members", roomHandler.AddMember)
		protected.GET("/rooms/:id/members", roomHandler.ListMembers)
	}

	// Mount Socket.IO endpoint at /v1/updates (accessible without auth for
	// handshake; credentials are checked after the connection is established)
	router.Any("/v1/updates", socketIOServer.HandleSocketIO())
	router.Any("/v1/updates/*any", socketIOServer.HandleSocketIO())

	// Plain WebSocket transport for clients without a Socket.IO stack
	router.GET("/v1/ws", simpleServer.HandleWebSocket)

	// Start HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("Parley Server starting on http://localhost%s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
}
