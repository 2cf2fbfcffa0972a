package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/feed"
	"github.com/language-needs/radar/internal/store"
)

const sampleRSS = `<rss><channel><item><title>Speech Data Collector - Korean</title><link>https://x/1</link><description>Seeking Korean speech and voice dialect data, RLHF rater support.</description></item></channel></rss>`

func newTestServer(t *testing.T, feedBody string) (*Server, string) {
	t.Helper()

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(feedBody))
	}))
	t.Cleanup(feedServer.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		FeedURL:             feedServer.URL,
		FetchTimeoutSeconds: 5,
		StoreType:           "local",
		OutputDir:           dir,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server, dir
}

func TestRunOnceClassifiesSampleFeed(t *testing.T) {
	server, dir := newTestServer(t, sampleRSS)

	summary, err := server.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if summary.FeedType != feed.TypeRSS {
		t.Errorf("FeedType = %s, want rss", summary.FeedType)
	}
	if !summary.Healthy() {
		t.Error("Expected healthy run")
	}
	if summary.TotalJobs != 1 {
		t.Fatalf("TotalJobs = %d, want 1", summary.TotalJobs)
	}

	job := summary.Sample[0]
	if !reflect.DeepEqual(job.Languages, []string{"Korean"}) {
		t.Errorf("Languages = %v, want [Korean]", job.Languages)
	}
	if !reflect.DeepEqual(job.Categories, []string{"Speech/ASR/TTS", "RLHF/Safety/Raters"}) {
		t.Errorf("Categories = %v", job.Categories)
	}
	if job.Link != "https://x/1" {
		t.Errorf("Link = %q", job.Link)
	}

	// All three artifacts land in the output directory.
	for _, name := range []string{store.SummaryName, store.RawName, store.DebugName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected artifact %s: %v", name, err)
		}
	}
}

func TestRunOnceHTMLResponse(t *testing.T) {
	server, dir := newTestServer(t, `<html><body>bot check</body></html>`)

	summary, err := server.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if summary.FeedType != feed.TypeHTML {
		t.Errorf("FeedType = %s, want html", summary.FeedType)
	}
	if summary.Healthy() {
		t.Error("Expected unhealthy run for HTML response")
	}
	if summary.TotalJobs != 0 {
		t.Errorf("TotalJobs = %d, want 0", summary.TotalJobs)
	}
	if summary.Note == "" {
		t.Error("Expected explanatory note for non-feed response")
	}

	// The summary artifact is still written, with zero counts.
	data, err := os.ReadFile(filepath.Join(dir, store.SummaryName))
	if err != nil {
		t.Fatalf("Expected summary artifact: %v", err)
	}
	if !strings.Contains(string(data), `"feed_type_detected": "html"`) {
		t.Errorf("Summary artifact = %s", data)
	}
}

func TestRunOnceParseError(t *testing.T) {
	server, _ := newTestServer(t, `<rss><channel><item><title>`)

	summary, err := server.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if summary.FeedType != feed.TypeParseError {
		t.Errorf("FeedType = %s, want parse_error", summary.FeedType)
	}
	if summary.ParseError == "" {
		t.Error("Expected non-empty parse error message")
	}
	if summary.Healthy() {
		t.Error("Expected unhealthy run for malformed XML")
	}
	// Count tables are still fully populated at zero.
	if len(summary.LanguageCounts) == 0 || len(summary.CategoryCounts) == 0 {
		t.Error("Expected zeroed count tables on parse error")
	}
}

func TestRunOnceFetchFailure(t *testing.T) {
	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := feedServer.URL
	feedServer.Close()

	cfg := &config.Config{
		FeedURL:             url,
		FetchTimeoutSeconds: 2,
		StoreType:           "local",
		OutputDir:           t.TempDir(),
	}
	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	summary, err := server.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce should survive a dead endpoint: %v", err)
	}
	if summary.FetchMeta.Error == "" {
		t.Error("Expected fetch error recorded in metadata")
	}
	if summary.FeedType != feed.TypeParseError {
		t.Errorf("FeedType = %s, want parse_error for empty body", summary.FeedType)
	}
}

func TestDebugArtifactTruncation(t *testing.T) {
	big := `<html>` + strings.Repeat("x", debugBodyLimit+5000) + `</html>`
	server, dir := newTestServer(t, big)

	if _, err := server.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, store.DebugName))
	if err != nil {
		t.Fatalf("Expected debug artifact: %v", err)
	}
	text := string(data)
	marker := "---- BODY (first 20000 chars) ----\n"
	idx := strings.Index(text, marker)
	if idx < 0 {
		t.Fatalf("Debug artifact missing body marker: %s", text[:100])
	}
	if body := text[idx+len(marker):]; len(body) != debugBodyLimit {
		t.Errorf("Debug body = %d chars, want %d", len(body), debugBodyLimit)
	}
}

func TestRunEndpoint(t *testing.T) {
	server, _ := newTestServer(t, sampleRSS)
	router := server.SetupRoutes()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Healthy bool `json:"healthy"`
		Summary struct {
			TotalJobs int `json:"total_jobs_in_feed"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response not JSON: %v", err)
	}
	if !response.Healthy || response.Summary.TotalJobs != 1 {
		t.Errorf("Response = %+v", response)
	}
}

func TestLatestSummaryEndpoint(t *testing.T) {
	server, _ := newTestServer(t, sampleRSS)
	router := server.SetupRoutes()

	// Nothing written yet.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status before any run = %d, want 404", rec.Code)
	}

	if _, err := server.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary/latest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status after run = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"feed_type_detected":"rss"`) {
		t.Errorf("Body = %s", rec.Body.String())
	}
}

func TestArtifactsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, sampleRSS)
	router := server.SetupRoutes()

	if _, err := server.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}

	var response struct {
		Artifacts []store.Artifact `json:"artifacts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response not JSON: %v", err)
	}
	if len(response.Artifacts) != 3 {
		t.Errorf("Expected 3 artifacts, got %d", len(response.Artifacts))
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, sampleRSS)
	router := server.SetupRoutes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("Body = %s", rec.Body.String())
	}
}
