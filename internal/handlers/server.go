package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/language-needs/radar/internal/classify"
	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/feed"
	"github.com/language-needs/radar/internal/fetch"
	"github.com/language-needs/radar/internal/report"
	"github.com/language-needs/radar/internal/slack"
	"github.com/language-needs/radar/internal/store"
)

// debugBodyLimit caps how much of the raw response body the debug
// artifact keeps.
const debugBodyLimit = 20000

const noFeedNote = "No RSS/Atom item/entry elements were found. The response is likely an HTML page (redirect or bot blocking), or the feed endpoint has been deprecated."

// Server holds the pipeline dependencies. The CLI and the HTTP server
// both drive the same RunOnce.
type Server struct {
	config      *config.Config
	fetchClient *fetch.Client
	artifacts   store.Store
	slackClient *slack.Client
	languages   classify.Taxonomy
	categories  classify.Taxonomy
}

// NewServer wires up the pipeline from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	artifacts, err := store.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("creating artifact store: %w", err)
	}

	s := &Server{
		config:      cfg,
		fetchClient: fetch.NewClient(time.Duration(cfg.FetchTimeoutSeconds) * time.Second),
		artifacts:   artifacts,
		languages:   classify.Languages(),
		categories:  classify.Categories(),
	}
	if cfg.SlackWebhookURL != "" {
		s.slackClient = slack.NewClient(cfg.SlackWebhookURL)
	}
	return s, nil
}

// Close releases the artifact store.
func (s *Server) Close() error {
	return s.artifacts.Close()
}

// RunOnce executes the whole pipeline: fetch, parse, classify,
// aggregate, write artifacts. It returns an error only when an
// artifact cannot be written; a broken feed still produces a summary,
// and the caller decides the exit status from Summary.Healthy.
func (s *Server) RunOnce(ctx context.Context) (*report.Summary, error) {
	runID := uuid.New().String()
	generatedAt := report.Timestamp(time.Now())
	log.Printf("Starting feed run %s: %s", runID, s.config.FeedURL)

	result := s.fetchClient.Fetch(ctx, s.config.FeedURL)
	if result.Failed() {
		log.Printf("Fetch problem: %s", result.Error)
	}

	// Best effort: a debug-write failure never fails the run.
	if err := s.artifacts.WriteDebug(ctx, s.debugText(result)); err != nil {
		log.Printf("Error writing debug artifact: %v", err)
	}

	detected := feed.Detect(result.Body)
	agg := report.NewAggregator(s.languages, s.categories)
	for _, el := range detected.Entries {
		entry := feed.ExtractEntry(el, detected.Type)
		blob := classify.Blob(entry.Title, entry.Description)
		agg.Add(report.Job{
			Title:      entry.Title,
			Link:       entry.Link,
			PubDate:    entry.Published,
			Languages:  s.languages.Match(blob),
			Categories: s.categories.Match(blob),
		})
	}

	summary := &report.Summary{
		Source:         s.config.FeedURL,
		RunID:          runID,
		GeneratedAt:    generatedAt,
		FetchMeta:      result,
		FeedType:       detected.Type,
		RootTag:        detected.RootTag,
		ParseError:     detected.ParseErr,
		TotalJobs:      len(agg.Jobs()),
		LanguageCounts: agg.LanguageCounts(),
		CategoryCounts: agg.CategoryCounts(),
		CrossTab:       agg.CrossTab(),
		Sample:         agg.Sample(),
	}
	if detected.Type == feed.TypeHTML || detected.Type == feed.TypeNone {
		summary.Note = noFeedNote
	}

	raw := &report.Raw{
		Source:      s.config.FeedURL,
		RunID:       runID,
		GeneratedAt: generatedAt,
		FeedType:    detected.Type,
		Jobs:        agg.Jobs(),
	}

	if err := s.artifacts.WriteRaw(ctx, raw); err != nil {
		return summary, fmt.Errorf("writing raw artifact: %w", err)
	}
	if err := s.artifacts.WriteSummary(ctx, summary); err != nil {
		return summary, fmt.Errorf("writing summary artifact: %w", err)
	}

	if !summary.Healthy() && s.slackClient != nil {
		if err := s.slackClient.SendBreakageAlert(ctx, summary); err != nil {
			log.Printf("Error sending Slack alert: %v", err)
		}
	}

	log.Printf("Run %s complete: feed_type=%s jobs=%d", runID, summary.FeedType, summary.TotalJobs)
	return summary, nil
}

// debugText renders the plain-text debug artifact for humans
// diagnosing feed breakage.
func (s *Server) debugText(result fetch.Result) string {
	status := "none"
	if result.StatusCode != nil {
		status = fmt.Sprintf("%d", *result.StatusCode)
	}

	body := result.Body
	if len(body) > debugBodyLimit {
		body = body[:debugBodyLimit]
	}

	text := fmt.Sprintf("URL: %s\nFinal URL: %s\nStatus: %s\nContent-Type: %s\n",
		s.config.FeedURL, result.FinalURL, status, result.ContentType)
	if result.Error != "" {
		text += fmt.Sprintf("Error: %s\n", result.Error)
	}
	text += "\n---- BODY (first 20000 chars) ----\n" + body
	return text
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Pipeline operations
	api.HandleFunc("/run", s.runHandler).Methods("POST")

	// Artifact operations
	api.HandleFunc("/summary/latest", s.latestSummaryHandler).Methods("GET")
	api.HandleFunc("/artifacts", s.artifactsHandler).Methods("GET")

	// Configuration
	api.HandleFunc("/config", s.configHandler).Methods("GET")

	return r
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// runHandler triggers one pipeline run and returns the summary.
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.RunOnce(r.Context())
	if err != nil {
		log.Printf("Run failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"healthy": summary.Healthy(),
		"summary": summary,
	})
}

// latestSummaryHandler returns the most recently written summary.
func (s *Server) latestSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.artifacts.ReadSummary(r.Context())
	if err != nil {
		log.Printf("Error reading summary: %v", err)
		http.Error(w, "No summary available", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// artifactsHandler lists the stored artifacts.
func (s *Server) artifactsHandler(w http.ResponseWriter, r *http.Request) {
	artifacts, err := s.artifacts.List(r.Context())
	if err != nil {
		log.Printf("Error listing artifacts: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"artifacts": artifacts,
	})
}

// configHandler exposes the non-secret configuration.
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.config)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Middleware functions

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
