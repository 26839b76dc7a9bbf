package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"scuttle/internal/catalog"
	"scuttle/internal/config"
	"scuttle/internal/endpoints"
	"scuttle/internal/events"
	"scuttle/internal/fetcher"
	"scuttle/internal/importer"
	"scuttle/internal/postprocess"
	"scuttle/internal/queue"
	"scuttle/internal/server"
	"scuttle/internal/worker"
)

func main() {
	// Initialize structured logging
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(jsonHandler))

	// Tool paths and webhook config live in the env file written by the
	// supervisor's setup. Absence is fine on a hand-configured host.
	if err := godotenv.Load(config.EnvFile); err == nil {
		slog.Info("Loaded environment file", "path", config.EnvFile)
	}

	// Event plumbing
	bus := events.NewBus()
	broadcaster := events.NewBroadcaster()
	events.RegisterEventHandlers(bus, broadcaster)

	// Queues
	playQueue := queue.NewPlayQueue(bus)
	downloadQueue := queue.NewDownloadQueue(bus)

	// Persistent catalog
	store, err := catalog.Open(config.DatabasePath, bus)
	if err != nil {
		slog.Error("Failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Seed(config.SeedCSVPath); err != nil {
		slog.Error("Catalog seed failed", "error", err)
	}
	if err := store.CleanupDownloadDir(config.DownloadDir); err != nil {
		slog.Error("Download directory cleanup failed", "error", err)
	}

	// Fetch and post-processing chain
	pipeline := postprocess.New(config.FFmpegBin, config.FFprobeBin)
	trackFetcher := fetcher.New(config.FetcherBin, config.DownloadDir, bus, pipeline)

	// Download worker
	downloadWorker := worker.New(playQueue, downloadQueue, trackFetcher, store)
	go downloadWorker.Run()

	// HTTP server
	srv := server.NewServer(config.Port, endpoints.Deps{
		Store:         store,
		PlayQueue:     playQueue,
		DownloadQueue: downloadQueue,
		Searcher:      trackFetcher,
		Importer:      importer.NewRegistry(importer.NewSpotifyExtractor()),
		Broadcaster:   broadcaster,
		DownloadDir:   config.DownloadDir,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed to start", "error", err)
			cancel()
		}
	}()

	slog.Info("Scuttle server started", "port", config.Port)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	downloadWorker.Shutdown()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	} else {
		slog.Info("Server exited gracefully")
	}
}
