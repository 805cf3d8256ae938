package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"youtube-summarizer/internal/application"
	"youtube-summarizer/internal/config"
	"youtube-summarizer/internal/handlers"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("YouTube Summarizer Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  MODEL_PATH                 Path to the GGUF summarization model (required)\n")
		fmt.Printf("  WHISPER_MODEL_PATH         Path to the whisper.cpp model (default: ggml-base.en.bin)\n")
		fmt.Printf("  PORT                       Server port (default: 8080)\n")
		fmt.Printf("  HOST                       Server host (default: 0.0.0.0)\n")
		fmt.Printf("  MAX_CHUNK_SIZE             Transcript chunk size in characters (default: %d)\n", config.DefaultChunkSize)
		fmt.Printf("  CHUNK_OVERLAP              Overlap between chunks in characters (default: %d)\n", config.DefaultOverlap)
		fmt.Printf("  CACHE_TYPE                 Cache type: file or memory (default: file)\n")
		fmt.Printf("  CACHE_DURATION_HOURS       Cache entry lifetime (default: 168)\n")
		fmt.Printf("  NOTIFY_WEBHOOK_URL         Optional webhook for completed summaries\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("YouTube Summarizer Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Wire the pipeline
	app, err := application.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	// Create server and routes
	server := handlers.NewServer(app)
	router := server.SetupRoutes()

	// Create HTTP server. Write timeout must cover a full pipeline run.
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.FetchTimeout+2*cfg.InferenceTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule periodic cleanup of expired cache entries and stale audio
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		app.PurgeExpired(ctx)
	}); err != nil {
		log.Printf("Failed to schedule cache cleanup: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		log.Printf("Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down server...")

	// Cancel background tasks
	cancel()
	c.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
