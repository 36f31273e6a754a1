package newsletter

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/model"
)

// ContextStore is the context-storage collaborator.
type ContextStore interface {
	AddContext(ctx context.Context, doc model.ContextDocument) error
	SearchContext(ctx context.Context, query model.ContextQuery) ([]model.ContextSnippet, error)
}

// Generator is the generative-AI collaborator. It returns the raw completion text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Archive keeps a copy of every uploaded context document.
type Archive interface {
	Put(ctx context.Context, doc model.ContextDocument) (string, error)
}

// Source tells where the returned newsletter came from
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is the newsletter plus diagnostics about how it was produced.
type Result struct {
	Newsletter     model.Newsletter
	Source         Source
	FallbackReason string
	Ingest         *IngestResult
	Retrieval      *RetrievalResult
}

// Service runs the newsletter pipeline. Any collaborator may be nil.
type Service struct {
	store     ContextStore
	archive   Archive
	generator Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a pipeline from explicitly constructed collaborators.
func NewService(store ContextStore, archive Archive, generator Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		archive:   archive,
		generator: generator,
		logger:    logger.Named("newsletter"),
		now:       time.Now,
	}
}

// HasGenerator reports whether a generative-AI provider is configured
func (s *Service) HasGenerator() bool {
	return s.generator != nil
}

// Validate checks a request without side effects.
func Validate(req model.NewsletterRequest, requireFile bool) error {
	missing := req.MissingFields()
	if requireFile && req.ContextFile == nil {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: MsgMissingFields, Fields: missing}
	}
	return ValidateContextFile(req.ContextFile)
}

// Generate validates the request and produces a newsletter. Only a
// *ValidationError or a *FaultError is ever returned; every collaborator
// failure degrades to the fallback newsletter.
func (s *Service) Generate(ctx context.Context, req model.NewsletterRequest) (result *Result, err error) {
	if err := Validate(req, false); err != nil {
		return nil, err
	}

	var canonical string
	if req.ContextFile != nil {
		canonical, err = ParseContextFile(req.ContextFile.Data)
		if err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Unhandled fault in newsletter pipeline",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			result = nil
			err = &FaultError{Details: fmt.Sprint(r)}
		}
	}()

	return s.run(ctx, InputFrom(req), req.ContextFile, canonical), nil
}

func (s *Service) run(ctx context.Context, in Input, file *model.ContextFile, canonical string) *Result {
	start := s.now()
	result := &Result{}

	if file != nil {
		ingest := s.ingest(ctx, file, canonical)
		result.Ingest = &ingest
	}

	defer func() {
		s.logger.Info("Newsletter generated",
			zap.String("topic", in.Topic),
			zap.String("source", string(result.Source)),
			zap.String("fallback_reason", result.FallbackReason),
			zap.Int64("duration_ms", s.now().Sub(start).Milliseconds()))
	}()

	if s.generator == nil {
		return s.fallback(result, in, "no generative-AI credentials configured", nil)
	}

	retrieval := s.retrieve(ctx, in.Topic)
	result.Retrieval = &retrieval

	prompt := BuildPrompt(in, retrieval.Text())

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.fallback(result, in, "generation failed", fmt.Errorf("%w: %w", ErrGenerationService, err))
	}

	outcome := ParseAndValidate(raw)
	switch outcome.Kind {
	case OutcomeOK:
		result.Newsletter = outcome.Newsletter
		result.Source = SourceModel
		return result
	default:
		return s.fallback(result, in, outcome.Kind.String(), outcome.Err)
	}
}

func (s *Service) fallback(result *Result, in Input, reason string, cause error) *Result {
	fields := []zap.Field{zap.String("reason", reason)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	s.logger.Warn("Using fallback newsletter", fields...)

	result.Newsletter = Fallback(in)
	result.Source = SourceFallback
	result.FallbackReason = reason
	return result
}
