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

	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/handlers"
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
		fmt.Printf("Language Needs Radar Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  FEED_URL              Job feed URL (default: Google careers feed)\n")
		fmt.Printf("  OUTPUT_DIR            Local artifact directory (default: data)\n")
		fmt.Printf("  STORE_TYPE            Artifact store: local or cloud-storage (default: local)\n")
		fmt.Printf("  STORE_BUCKET          Cloud Storage bucket for artifacts\n")
		fmt.Printf("  SLACK_WEBHOOK_URL     Webhook for feed-breakage alerts (optional)\n")
		fmt.Printf("  RADAR_CRON            Cron schedule for automatic runs (optional)\n")
		fmt.Printf("  PORT                  Server port (default: 8080)\n")
		fmt.Printf("  HOST                  Server host (default: 0.0.0.0)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Language Needs Radar Server\n")
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

	// Create server
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Setup routes
	router := server.SetupRoutes()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule automatic runs when a cron expression is configured
	c := cron.New()
	if cfg.CronSchedule != "" {
		_, err := c.AddFunc(cfg.CronSchedule, func() {
			log.Printf("🕐 Scheduled run starting")
			summary, err := server.RunOnce(ctx)
			if err != nil {
				log.Printf("❌ Scheduled run failed: %v", err)
				return
			}
			if !summary.Healthy() {
				log.Printf("⚠️ Scheduled run found no usable feed (feed_type=%s)", summary.FeedType)
				return
			}
			log.Printf("✅ Scheduled run completed: %d jobs", summary.TotalJobs)
		})
		if err != nil {
			log.Fatalf("Failed to schedule runs with cron %q: %v", cfg.CronSchedule, err)
		}
		log.Printf("📅 Scheduled runs with cron: %s", cfg.CronSchedule)
		c.Start()
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		log.Printf("🚀 Starting server on %s:%s", cfg.Host, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("🛑 Shutting down server...")

	// Cancel background tasks
	cancel()

	// Stop cron scheduler
	c.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := server.Close(); err != nil {
		log.Printf("Error closing artifact store: %v", err)
	}

	log.Println("✅ Server stopped")
}
