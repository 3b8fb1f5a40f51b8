package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orbitml/exoserve/internal/adapter/artifact"
	"github.com/orbitml/exoserve/internal/adapter/http/router"
	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/infrastructure/config"
	"github.com/orbitml/exoserve/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Build the model registry from the static artifact table. Artifacts are
	// loaded lazily on first request, not here.
	table := make(map[entity.DatasetType]artifact.Paths, len(cfg.Models))
	for dt, artifacts := range cfg.Models {
		table[entity.DatasetType(dt)] = artifact.Paths{
			Model:        artifacts.Model,
			Preprocessor: artifacts.Preprocessor,
		}
	}
	registry := artifact.NewRegistry(table, log)
	log.Info("model registry initialized",
		zap.String("dataset_types", strings.Join(cfg.Models.DatasetTypes(), ", ")))

	// Setup router
	r := router.Setup(cfg, registry, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
