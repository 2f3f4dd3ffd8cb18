package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"whiteboard/internal/auth"
	"whiteboard/internal/config"
	"whiteboard/internal/database"
	"whiteboard/internal/handlers"
	"whiteboard/internal/moderation"
	"whiteboard/internal/scene"
	"whiteboard/internal/services"
	"whiteboard/internal/websocket"
	"whiteboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		logger.Fatal("%v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing store...")
		store.Close()
	}()

	// Initialize services
	authService := auth.NewService([]byte(cfg.JWT.Secret))
	moderator, err := moderation.NewModerator(cfg.Hub.CensoredWords, cfg.Hub.CensorRune())
	if err != nil {
		return fmt.Errorf("failed to build chat moderator: %w", err)
	}

	// Initialize sync engine
	registry := websocket.NewRegistry()
	scenes := scene.NewScenes()
	routerCfg := websocket.RouterConfig{
		StoreTimeout:   cfg.Hub.StoreTimeout,
		ChatHistory:    cfg.Hub.ChatHistory,
		NameRetryAfter: cfg.Hub.NameRetryAfter,
	}
	if moderator != nil {
		routerCfg.Filter = moderator
	}
	router := websocket.NewRouter(registry, scenes, store, routerCfg)
	go scenes.RunJanitor(ctx, cfg.Hub.CleanupInterval, cfg.Hub.SceneIdleTTL, registry.Occupied)

	// Initialize handlers
	roomHandlers := handlers.NewRoomHandlers(services.NewRoomService(registry, scenes), authService)
	wsHandlers := handlers.NewWebSocketHandlers(authService, registry, router, websocket.ClientConfig{
		SendBuffer:     cfg.Hub.SendBuffer,
		MaxMessageSize: cfg.Hub.MaxMessageSize,
	}, cfg.Hub.AllowedOrigins)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, roomHandlers, wsHandlers)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Server started on %s", cfg.Server.Addr)
		logger.Info("WebSocket endpoint: ws://localhost%s/ws?token=<jwt>", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server shutting down...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	// Hijacked WebSocket connections are not closed by Shutdown.
	registry.CloseAll()
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (database.Store, error) {
	switch cfg.Driver {
	case "badger":
		db, err := database.NewBadgerDB(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using embedded store at %s", cfg.BadgerPath)
		return db, nil
	default:
		db, err := database.NewPostgresDB(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}
}

func setupRoutes(mux *http.ServeMux, roomHandlers *handlers.RoomHandlers, wsHandlers *handlers.WebSocketHandlers) {
	mux.HandleFunc("GET /healthz", roomHandlers.Health)
	mux.HandleFunc("GET /rooms/{id}/scene", roomHandlers.GetScene)
	mux.HandleFunc("GET /rooms/{id}/active", roomHandlers.GetActiveUsers)

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
	mux.HandleFunc("/", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
