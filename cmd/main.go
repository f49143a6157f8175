/*
Package main is the entry point for the PairChat server.

It is responsible for loading configuration, initializing the global logging system,
connecting to the database and running migrations, wiring the presence registry
and delivery engine, setting up the HTTP server, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/db"
	"pairchat/internal/app/store"
	"pairchat/internal/configs"
	"pairchat/internal/handler"
	"pairchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Postgres and apply migrations.
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	pgStore := store.NewPostgresStore(pool)

	// Wire the core: presence registry and delivery engine.
	presence := chat.NewMemoryRegistry()
	delivery := chat.NewDelivery(pgStore, pgStore, presence)

	deps := &handler.AppDeps{
		Config:   cfg,
		Presence: presence,
		Delivery: delivery,
		Users:    pgStore,
		Messages: pgStore,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("PairChat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	// Close remaining live connections so clients see a clean goodbye.
	for _, conn := range presence.Connections() {
		if client, ok := conn.(*chat.Client); ok {
			client.CloseGracefully("Server is shutting down.")
		}
	}

	logx.Info("Server gracefully stopped.")
}
