package newsletter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/model"
)

// RetrievalStatus tags the outcome of a context search
type RetrievalStatus int

const (
	RetrievalFound RetrievalStatus = iota
	RetrievalEmpty
	RetrievalFailed
)

func (s RetrievalStatus) String() string {
	switch s {
	case RetrievalFound:
		return "found"
	case RetrievalEmpty:
		return "empty"
	case RetrievalFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RetrievalResult carries retrieved context. Text is empty unless Status is RetrievalFound.
type RetrievalResult struct {
	Status   RetrievalStatus
	Snippets int
	Err      error
	text     string
}

// Text returns the joined snippets, or "" for empty and failed searches.
func (r RetrievalResult) Text() string {
	if r.Status != RetrievalFound {
		return ""
	}
	return r.text
}

// JoinSnippets concatenates snippet contents in provider order, separated by a blank line.
func JoinSnippets(snippets []model.ContextSnippet) string {
	parts := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		parts = append(parts, snippet.Content)
	}
	return strings.Join(parts, "\n\n")
}

// retrieve searches the context store for the topic. It never fails.
func (s *Service) retrieve(ctx context.Context, topic string) RetrievalResult {
	if s.store == nil {
		return RetrievalResult{Status: RetrievalEmpty}
	}

	snippets, err := s.store.SearchContext(ctx, model.NewContextQuery(topic))
	if err != nil {
		err = fmt.Errorf("%w: searching context: %w", ErrContextService, err)
		s.logger.Warn("Context search failed, continuing without context",
			zap.String("topic", topic), zap.Error(err))
		return RetrievalResult{Status: RetrievalFailed, Err: err}
	}

	if len(snippets) == 0 {
		s.logger.Debug("No related context found", zap.String("topic", topic))
		return RetrievalResult{Status: RetrievalEmpty}
	}

	return RetrievalResult{
		Status:   RetrievalFound,
		Snippets: len(snippets),
		text:     JoinSnippets(snippets),
	}
}
