package store

import (
	"context"
	"fmt"
	"time"

	"github.com/language-needs/radar/internal/config"
	"github.com/language-needs/radar/internal/report"
)

// Artifact names are a stable contract: the scheduler that runs this
// job inspects them by name.
const (
	SummaryName = "google_jobs_summary.json"
	RawName     = "google_jobs_raw.json"
	DebugName   = "google_feed_debug.txt"
)

// Artifact describes one stored output file.
type Artifact struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Updated time.Time `json:"updated"`
}

// Store persists the run artifacts.
type Store interface {
	WriteSummary(ctx context.Context, summary *report.Summary) error
	WriteRaw(ctx context.Context, raw *report.Raw) error
	WriteDebug(ctx context.Context, content string) error
	ReadSummary(ctx context.Context) (*report.Summary, error)
	List(ctx context.Context) ([]Artifact, error)
	Close() error
}

// New creates the store selected by configuration.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreType {
	case "local":
		return NewLocalStore(cfg.OutputDir), nil
	case "cloud-storage":
		return NewCloudStorageStore(ctx, cfg.StoreBucket, cfg.StorePrefix)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.StoreType)
	}
}
