package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/handlers"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create server instance (contains all the pipeline dependencies)
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	ctx := context.Background()

	// Run the pipeline once; artifacts are written even on broken feeds
	summary, err := server.RunOnce(ctx)
	if closeErr := server.Close(); closeErr != nil {
		log.Printf("Error closing artifact store: %v", closeErr)
	}
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	if !summary.Healthy() {
		// Non-zero exit so the scheduler alerts on feed breakage while
		// the artifacts keep a record of what was observed.
		log.Printf("WARN: no usable feed detected (feed_type=%s). See the debug artifact in %s", summary.FeedType, cfg.OutputDir)
		os.Exit(1)
	}
	fmt.Printf("Run completed successfully: %d jobs in feed\n", summary.TotalJobs)
}
