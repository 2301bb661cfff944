/*
Package main is the entry point for the Vaultboard treasury dashboard server.

It is responsible for loading configuration, initializing the global logging
system, opening the document store, starting the broadcast hub, setting up
the HTTP server, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"vaultboard/internal/app/lobby"
	"vaultboard/internal/app/price"
	"vaultboard/internal/app/storage"
	"vaultboard/internal/app/store"
	"vaultboard/internal/configs"
	"vaultboard/internal/handler"
	"vaultboard/internal/pkg/logx"
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
		Str("data_dir", cfg.DataDir).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("s3_storage", cfg.S3BucketName != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the document store
	docStore, err := store.New(cfg.DataDir)
	if err != nil {
		logx.Fatal(err, "Failed to open document store")
	}

	// Initialize upload artifact storage
	files, err := storage.NewService(storage.ServiceConfig{
		UploadsDir:        filepath.Join(cfg.PublicDir, "uploads"),
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize upload storage")
	}

	clock := clockwork.NewRealClock()

	// Start the broadcast hub
	hub := lobby.NewHub(docStore, clock)
	go hub.Run()

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Config: cfg,
		Store:  docStore,
		Files:  files,
		Price:  price.NewService(cfg.PriceUpstreamURL, clock),
		Hub:    hub,
		Events: hub,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Vaultboard server starting on http://localhost%s", serverAddr))
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

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
