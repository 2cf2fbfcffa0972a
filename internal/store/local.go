package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/language-needs/radar/internal/report"
)

// LocalStore writes artifacts into a directory, creating it if absent.
// This is the mode the scheduled pipeline commits back to the repo.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at the given output directory.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) WriteSummary(ctx context.Context, summary *report.Summary) error {
	return s.writeJSON(SummaryName, summary)
}

func (s *LocalStore) WriteRaw(ctx context.Context, raw *report.Raw) error {
	return s.writeJSON(RawName, raw)
}

func (s *LocalStore) WriteDebug(ctx context.Context, content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, DebugName), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", DebugName, err)
	}
	return nil
}

func (s *LocalStore) ReadSummary(ctx context.Context) (*report.Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, SummaryName))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", SummaryName, err)
	}
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", SummaryName, err)
	}
	return &summary, nil
}

func (s *LocalStore) List(ctx context.Context) ([]Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing output directory: %w", err)
	}
	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Size:    info.Size(),
			Updated: info.ModTime(),
		})
	}
	return artifacts, nil
}

func (s *LocalStore) Close() error {
	return nil
}

func (s *LocalStore) writeJSON(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
