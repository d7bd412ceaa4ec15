package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eldrun-online/community-hub/backend/config"
	"github.com/eldrun-online/community-hub/backend/database"
	"github.com/eldrun-online/community-hub/backend/handlers"
	"github.com/eldrun-online/community-hub/backend/middleware"
	"github.com/eldrun-online/community-hub/backend/remoteapi"
	"github.com/eldrun-online/community-hub/backend/repository"
	"github.com/eldrun-online/community-hub/backend/services"
	"github.com/eldrun-online/community-hub/backend/store"
	"github.com/eldrun-online/community-hub/backend/websocket"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded - Port: %s, Remote API: %q", cfg.Port, cfg.RemoteAPIURL)

	// Initialize database (persisted subset: admin settings, preferences)
	if err := database.Init(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize WebSocket hub
	metrics := websocket.NewMetrics()
	wsHub := websocket.NewHub(metrics)
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize repositories
	settingsRepo := repository.NewSettingsRepository()
	prefsRepo := repository.NewPreferencesRepository()

	// Initialize the state container. Chat state is never persisted locally:
	// it is seeded for demo mode and replaced wholesale once a backend syncs.
	st := store.New()
	if saved, err := settingsRepo.Load(); err != nil {
		log.Printf("Warning: failed to load persisted settings, using defaults: %v", err)
	} else if saved != nil {
		st.SetSettings(saved)
		log.Println("Loaded persisted admin settings")
	}
	st.SeedDemo()

	// Initialize services
	modSvc := services.NewModerationService(st)

	var syncSvc *services.SyncService
	if cfg.RemoteAPIURL != "" {
		client := remoteapi.NewClient(cfg.RemoteAPIURL)
		syncSvc = services.NewSyncService(st, client, wsHub, metrics, cfg.SyncInterval, cfg.SyncPageSize)

		// Try to attach the backend once at startup; a failure keeps the
		// seeded demo state and local mode.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = syncSvc.SyncChannels(ctx)
		}()
		syncSvc.Start()
	}

	// The simulator always runs; its per-tick remote check silences it as
	// soon as a backend attaches.
	presenceSvc := services.NewPresenceService(st, wsHub, metrics, cfg.SimulatorInterval)
	presenceSvc.Start()
	defer presenceSvc.Stop()

	// Initialize auth
	jwtService := middleware.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationDays)*24*time.Hour)

	// Initialize handlers
	channelHandler := handlers.NewChannelHandler(st, modSvc, syncSvc, wsHub)
	messageHandler := handlers.NewMessageHandler(st, modSvc, syncSvc, wsHub, metrics)
	ledgerHandler := handlers.NewLedgerHandler(st, modSvc, wsHub)
	userHandler := handlers.NewUserHandler(st, wsHub)
	settingsHandler := handlers.NewSettingsHandler(st, settingsRepo, wsHub)
	prefsHandler := handlers.NewPreferencesHandler(prefsRepo)
	wsHandler := handlers.NewWebSocketHandler(wsHub, cfg.FrontendURL)
	syncHandler := handlers.NewSyncHandler(st, syncSvc)

	r := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Chat status (public)
		api.GET("/chat-status", settingsHandler.GetChatStatus)

		// WebSocket endpoint (token passed as query param)
		api.GET("/ws", middleware.AuthMiddleware(jwtService), wsHandler.HandleConnection)
		api.GET("/ws/status", wsHandler.GetStatus)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			// Channels
			protected.GET("/channels", channelHandler.List)
			protected.POST("/channels", channelHandler.Create)
			protected.POST("/channels/:id/select", channelHandler.Select)
			protected.POST("/channels/:id/join", channelHandler.Join)
			protected.POST("/channels/:id/leave", channelHandler.Leave)
			protected.POST("/channels/:id/read", userHandler.MarkRead)

			// Messages
			protected.GET("/channels/:id/messages", messageHandler.GetMessages)
			protected.POST("/channels/:id/messages", messageHandler.Create)
			protected.PUT("/messages/:id", messageHandler.Edit)
			protected.DELETE("/messages/:id", messageHandler.Delete)
			protected.POST("/messages/:id/reactions", messageHandler.AddReaction)
			protected.DELETE("/messages/:id/reactions", messageHandler.RemoveReaction)

			// Gifts
			protected.POST("/gifts/eldruns", ledgerHandler.GiftEldruns)
			protected.POST("/gifts/hearts", ledgerHandler.GiveHeart)
			protected.POST("/gifts/roses", ledgerHandler.SendRose)
			protected.POST("/gifts/kisses", ledgerHandler.SendKiss)

			// Users
			protected.GET("/users", userHandler.GetAll)
			protected.GET("/users/:id", userHandler.GetByID)
			protected.PUT("/users/status", userHandler.UpdateStatus)
			protected.GET("/notifications/unread", userHandler.UnreadCounts)

			// Preferences
			protected.GET("/preferences", prefsHandler.Get)
			protected.PUT("/preferences", prefsHandler.Update)

			// Sync status
			protected.GET("/sync/status", syncHandler.Status)

			// Moderator routes
			staff := protected.Group("")
			staff.Use(middleware.StaffMiddleware())
			{
				staff.PATCH("/channels/:id", channelHandler.Update)
				staff.DELETE("/channels/:id", channelHandler.Delete)
				staff.POST("/channels/:id/ban", channelHandler.Ban)
				staff.POST("/channels/:id/unban", channelHandler.Unban)
				staff.POST("/channels/:id/mute", channelHandler.Mute)
				staff.POST("/channels/:id/unmute", channelHandler.Unmute)
				staff.POST("/messages/:id/pin", messageHandler.Pin)
			}

			// Admin routes (require admin privileges)
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/settings", settingsHandler.GetSettings)
				admin.PUT("/settings", settingsHandler.UpdateSettings)
				admin.POST("/sync", syncHandler.Trigger)
			}
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
