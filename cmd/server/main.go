package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggyhrr/gift-code/internal/api"
	"github.com/ggyhrr/gift-code/internal/batch"
	"github.com/ggyhrr/gift-code/internal/century"
	"github.com/ggyhrr/gift-code/internal/config"
	"github.com/ggyhrr/gift-code/internal/roster"
	"github.com/ggyhrr/gift-code/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting gift-code server")

	// Open roster storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Restore the persisted roster; accounts always come back idle
	registry := roster.NewRegistry()
	saved, err := repo.LoadAccounts()
	if err != nil {
		slog.Error("Failed to load accounts", "error", err)
		os.Exit(1)
	}
	for _, acc := range saved {
		registry.Append(acc)
	}
	slog.Info("Loaded accounts", "count", len(saved))

	// Remote service client
	opts := []century.Option{
		century.WithBaseURL(cfg.APIBaseURL),
		century.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds) * time.Second),
	}
	if cfg.SignSalt != "" {
		opts = append(opts, century.WithSalt(cfg.SignSalt))
	}
	client := century.NewClient(opts...)

	// Batch service and HTTP surface
	alerts := api.NewAlertLog()
	svc := batch.New(registry, client, client, alerts.Notify, repo,
		time.Duration(cfg.RequestDelayMs)*time.Millisecond)
	handler := api.NewHandler(svc, alerts)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Routes(),
	}

	go func() {
		slog.Info("Listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Server stopped")
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
