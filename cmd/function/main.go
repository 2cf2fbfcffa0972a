package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/handlers"
)

func init() {
	// Register HTTP function for Cloud Scheduler triggers
	functions.HTTP("RunRadar", RunRadar)
}

// RunRadar executes one pipeline run per HTTP trigger. Cloud Scheduler
// posts here instead of running the CLI.
func RunRadar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Create server instance
	server, err := handlers.NewServer(cfg)
	if err != nil {
		log.Printf("Failed to create pipeline: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("Error closing artifact store: %v", err)
		}
	}()

	log.Printf("🕐 Running radar pipeline via HTTP trigger")
	summary, err := server.RunOnce(ctx)
	if err != nil {
		log.Printf("❌ Run failed: %v", err)
		http.Error(w, "Run failed", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Run completed via HTTP trigger: feed_type=%s jobs=%d", summary.FeedType, summary.TotalJobs)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"healthy":   summary.Healthy(),
		"feed_type": summary.FeedType,
		"jobs":      summary.TotalJobs,
	})
}

func main() {
	// This main function is required for Cloud Functions
	// The actual function registration happens in init()
}
