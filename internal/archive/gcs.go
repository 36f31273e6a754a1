package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/pep299/newsletter-generator/internal/model"
)

const (
	defaultPrefix       = "context/"
	expiresAtMetadata   = "expires_at"
	fileNameMetadata    = "file_name"
	objectSuffix        = ".json"
	contentTypeJSONBody = "application/json"
)

// CloudStorageArchive implements the archive on Google Cloud Storage, one JSON object per entry
type CloudStorageArchive struct {
	client     *storage.Client
	bucketName string
	prefix     string
	retention  time.Duration
	now        func() time.Time
}

// NewCloudStorageArchive creates a new Cloud Storage archive
func NewCloudStorageArchive(ctx context.Context, bucketName string, retention time.Duration) (*CloudStorageArchive, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &CloudStorageArchive{
		client:     client,
		bucketName: bucketName,
		prefix:     defaultPrefix,
		retention:  retention,
		now:        time.Now,
	}, nil
}

// New returns a Cloud Storage archive when bucketName is set, otherwise an in-memory one
func New(ctx context.Context, bucketName string, retention time.Duration) (Archive, error) {
	if bucketName == "" {
		return NewMemoryArchive(retention), nil
	}
	return NewCloudStorageArchive(ctx, bucketName, retention)
}

func (c *CloudStorageArchive) objectName(id string) string {
	return c.prefix + id + objectSuffix
}

// idFromObject is the inverse of objectName
func (c *CloudStorageArchive) idFromObject(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, c.prefix), objectSuffix)
}

// Put stores a document in Cloud Storage
func (c *CloudStorageArchive) Put(ctx context.Context, doc model.ContextDocument) (string, error) {
	entry := newEntry(doc, c.now(), c.retention)

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshaling archive entry: %w", err)
	}

	writer := c.client.Bucket(c.bucketName).Object(c.objectName(entry.ID)).NewWriter(ctx)
	writer.ContentType = contentTypeJSONBody
	writer.Metadata = map[string]string{
		expiresAtMetadata: entry.ExpiresAt.UTC().Format(time.RFC3339),
		fileNameMetadata:  doc.FileName,
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing object writer: %w", err)
	}

	return entry.ID, nil
}

// Get retrieves an unexpired entry from Cloud Storage
func (c *CloudStorageArchive) Get(ctx context.Context, id string) (*Entry, error) {
	reader, err := c.client.Bucket(c.bucketName).Object(c.objectName(id)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling archive entry: %w", err)
	}

	if c.now().After(entry.ExpiresAt) {
		return nil, ErrNotFound
	}

	return &entry, nil
}

// Delete removes an entry from Cloud Storage
func (c *CloudStorageArchive) Delete(ctx context.Context, id string) error {
	err := c.client.Bucket(c.bucketName).Object(c.objectName(id)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Prune deletes every object whose expiry metadata is before now
func (c *CloudStorageArchive) Prune(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: c.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return removed, fmt.Errorf("listing objects: %w", err)
		}

		if !objectExpired(attrs, now, c.retention) {
			continue
		}

		if err := c.Delete(ctx, c.idFromObject(attrs.Name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// GetStats returns archive statistics computed from object attributes
func (c *CloudStorageArchive) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Backend: "cloud-storage"}
	now := c.now()

	it := c.client.Bucket(c.bucketName).Objects(ctx, &storage.Query{Prefix: c.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		stats.TotalEntries++
		stats.TotalBytes += attrs.Size
		if stats.OldestEntry.IsZero() || attrs.Created.Before(stats.OldestEntry) {
			stats.OldestEntry = attrs.Created
		}
		if attrs.Created.After(stats.NewestEntry) {
			stats.NewestEntry = attrs.Created
		}
		if objectExpired(attrs, now, c.retention) {
			stats.ExpiredEntries++
		}
	}

	return stats, nil
}

// Close closes the storage client
func (c *CloudStorageArchive) Close() error {
	return c.client.Close()
}

// objectExpired reads the expiry from object metadata, falling back to creation time plus retention
func objectExpired(attrs *storage.ObjectAttrs, now time.Time, retention time.Duration) bool {
	if raw, ok := attrs.Metadata[expiresAtMetadata]; ok {
		if expiresAt, err := time.Parse(time.RFC3339, raw); err == nil {
			return now.After(expiresAt)
		}
	}
	return now.After(attrs.Created.Add(retention))
}
