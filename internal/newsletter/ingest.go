package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/newsletter-generator/internal/model"
)

// IngestStatus tags the outcome of submitting context
type IngestStatus int

const (
	IngestStored IngestStatus = iota
	IngestSkipped
	IngestFailed
)

func (s IngestStatus) String() string {
	switch s {
	case IngestStored:
		return "stored"
	case IngestSkipped:
		return "skipped"
	case IngestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IngestResult reports what happened to an uploaded context document.
// Failures are carried here instead of being returned as errors.
type IngestResult struct {
	Status    IngestStatus
	ArchiveID string
	Err       error
}

// acceptedContextTypes are the MIME types allowed for uploaded context
var acceptedContextTypes = map[string]bool{
	"application/json": true,
	"text/json":        true,
}

// ValidateContextFile checks an uploaded file before any processing.
// An empty MIME type is accepted so non-browser clients can omit it.
func ValidateContextFile(file *model.ContextFile) error {
	if file == nil {
		return nil
	}
	if len(file.Data) == 0 {
		return &ValidationError{Message: MsgEmptyFile, Fields: []string{"file"}}
	}
	if file.MimeType != "" {
		mediaType, _, err := mime.ParseMediaType(file.MimeType)
		if err != nil || !acceptedContextTypes[mediaType] {
			return &ValidationError{Message: MsgNotJSONFile, Fields: []string{"file"}}
		}
	}
	return nil
}

// ParseContextFile decodes data as UTF-8 JSON and returns its canonical
// pretty-printed form.
func ParseContextFile(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &ValidationError{Message: MsgInvalidJSON, Fields: []string{"file"}}
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &ValidationError{Message: MsgInvalidJSON, Fields: []string{"file"}}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(parsed); err != nil {
		return "", fmt.Errorf("re-encoding context file: %w", err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ingest submits the canonical document to the context store and the archive
// in parallel. Neither failure is returned.
func (s *Service) ingest(ctx context.Context, file *model.ContextFile, canonical string) IngestResult {
	doc := model.ContextDocument{
		Content:      canonical,
		FileName:     file.Name,
		FileType:     file.MimeType,
		LastModified: s.now().UTC(),
		FileSize:     len(canonical),
	}

	logger := s.logger.With(
		zap.String("file_name", doc.FileName),
		zap.String("file_type", doc.FileType),
		zap.Int("content_length", doc.FileSize),
	)

	var (
		storeErr   error
		archiveID  string
		archiveErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.store != nil {
		g.Go(func() error {
			if err := s.store.AddContext(gctx, doc); err != nil {
				storeErr = fmt.Errorf("%w: adding context: %w", ErrContextService, err)
			}
			return nil
		})
	}
	if s.archive != nil {
		g.Go(func() error {
			id, err := s.archive.Put(gctx, doc)
			if err != nil {
				archiveErr = fmt.Errorf("archiving context: %w", err)
				return nil
			}
			archiveID = id
			return nil
		})
	}
	_ = g.Wait()

	if archiveErr != nil {
		logger.Warn("Context archive failed, continuing", zap.Error(archiveErr))
	}

	if s.store == nil {
		logger.Debug("No context store configured, skipping context submission")
		return IngestResult{Status: IngestSkipped, ArchiveID: archiveID}
	}

	if storeErr != nil {
		logger.Warn("Failed to add context, continuing without stored context", zap.Error(storeErr))
		return IngestResult{Status: IngestFailed, ArchiveID: archiveID, Err: storeErr}
	}

	logger.Info("Context added")
	return IngestResult{Status: IngestStored, ArchiveID: archiveID}
}
