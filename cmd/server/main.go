package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiguard-backend/internal/config"
	"aiguard-backend/internal/database"
	"aiguard-backend/internal/handlers"
	"aiguard-backend/internal/middleware"
	"aiguard-backend/internal/router"
	"aiguard-backend/internal/services"
	"aiguard-backend/internal/settings"
	"aiguard-backend/internal/websocket"
	"aiguard-backend/web"
)

func main() {
	log.Println("🚀 Starting AI Guard Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	store := settings.NewStore(cfg.Seed)
	log.Println("✓ Environment variables loaded")

	if err := os.MkdirAll(cfg.TempDir, 0o700); err != nil {
		log.Fatalf("✗ Temp directory %s unusable: %v", cfg.TempDir, err)
	}

	// ──── Step 2: Start WebSocket Hub ────
	wsHub := websocket.NewHub()
	defer wsHub.Close()
	var events services.EventPublisher = wsHub
	log.Println("✓ WebSocket hub started")

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	// ──── Step 3: Initialize Redis Clients (optional) ────
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()

		events = services.NewRedisPublisher(redisClients.Publish)
		go wsHub.RelayFromRedis(relayCtx, redisClients.PubSub, services.EventsChannel)
		log.Println("✓ Redis connected, activity feed relayed via " + services.EventsChannel)
	} else {
		log.Println("  Redis not configured, activity feed is local only")
	}

	// ──── Step 4: Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.AdminJWTSecret)
	gateway := services.NewModelGateway()
	guard := services.NewContentGuard()
	scanner := services.NewFileScanner()
	mediator := services.NewMediator(store, gateway, guard, scanner, events, cfg.TempDir)

	if scanner.Available() {
		log.Println("✓ File Security SDK available")
	} else {
		log.Println("✗ File Security SDK not compiled in, file scans will report an error")
	}
	if !jwtAuth.Enabled() {
		log.Println("  ADMIN_JWT_SECRET not set, settings updates are open")
	}

	// ──── Step 5: Initialize Handlers ────
	r := router.New(jwtAuth, router.Handlers{
		Config: handlers.NewConfigHandler(store, scanner.Available()),
		Models: handlers.NewModelsHandler(store, gateway),
		Chat:   handlers.NewChatHandler(mediator),
		Scan:   handlers.NewScanHandler(mediator, cfg.UploadMaxMB),
		Health: handlers.NewHealthHandler(store, scanner.Available()),
		Index:  handlers.Index(web.Index),
	}, wsHub, cfg.FrontendURL)

	// ──── Step 6: Start HTTP Server ────
	// Chat turns wait up to 120s on the model plus two guard calls.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 200 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		stopRelay()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ AI Guard Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/events", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
