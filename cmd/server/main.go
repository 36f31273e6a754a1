package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/application"
	"github.com/pep299/newsletter-generator/internal/config"
	"github.com/pep299/newsletter-generator/internal/handlers"
	"github.com/pep299/newsletter-generator/internal/logging"
)

func main() {
	help := flag.Bool("help", false, "Show usage")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(handlers.Version)
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build application
	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create application", zap.Error(err))
	}
	defer app.Close()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      app.Server.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeoutDuration() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Schedule archive pruning
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ArchivePruneSchedule, func() {
		removed, err := app.Archive.Prune(ctx, time.Now())
		if err != nil {
			logger.Error("Archive pruning failed", zap.Error(err))
			return
		}
		logger.Info("Archive pruned", zap.Int("removed", removed))
	})
	if err != nil {
		logger.Fatal("Invalid archive prune schedule",
			zap.String("schedule", cfg.ArchivePruneSchedule), zap.Error(err))
	}
	scheduler.Start()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", httpServer.Addr),
			zap.String("version", handlers.Version),
			zap.String("llm_provider", cfg.LLMProvider))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutting down server...")

	// Stop background jobs
	<-scheduler.Stop().Done()
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
