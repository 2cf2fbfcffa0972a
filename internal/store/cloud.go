package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/language-needs/radar/internal/report"
)

// CloudStorageStore writes artifacts to a Google Cloud Storage bucket
// under an object prefix, for deployments where the job runs as a
// scheduled function instead of inside a repo checkout.
type CloudStorageStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewCloudStorageStore creates a store backed by the given bucket.
func NewCloudStorageStore(ctx context.Context, bucket, prefix string) (*CloudStorageStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &CloudStorageStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *CloudStorageStore) WriteSummary(ctx context.Context, summary *report.Summary) error {
	return s.writeJSON(ctx, SummaryName, summary)
}

func (s *CloudStorageStore) WriteRaw(ctx context.Context, raw *report.Raw) error {
	return s.writeJSON(ctx, RawName, raw)
}

func (s *CloudStorageStore) WriteDebug(ctx context.Context, content string) error {
	return s.writeObject(ctx, DebugName, "text/plain; charset=utf-8", []byte(content))
}

func (s *CloudStorageStore) ReadSummary(ctx context.Context) (*report.Summary, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.objectName(SummaryName)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", SummaryName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", SummaryName, err)
	}
	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", SummaryName, err)
	}
	return &summary, nil
}

func (s *CloudStorageStore) List(ctx context.Context) ([]Artifact, error) {
	query := &storage.Query{Prefix: s.prefix}
	it := s.client.Bucket(s.bucket).Objects(ctx, query)

	var artifacts []Artifact
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucket, err)
		}
		artifacts = append(artifacts, Artifact{
			Name:    attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}
	return artifacts, nil
}

func (s *CloudStorageStore) Close() error {
	return s.client.Close()
}

func (s *CloudStorageStore) writeJSON(ctx context.Context, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	return s.writeObject(ctx, name, "application/json", append(data, '\n'))
}

func (s *CloudStorageStore) writeObject(ctx context.Context, name, contentType string, data []byte) error {
	obj := s.client.Bucket(s.bucket).Object(s.objectName(name))
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", name, err)
	}
	return nil
}

func (s *CloudStorageStore) objectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
