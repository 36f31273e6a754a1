package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pep299/newsletter-generator/internal/alchemyst"
	"github.com/pep299/newsletter-generator/internal/archive"
	"github.com/pep299/newsletter-generator/internal/config"
	"github.com/pep299/newsletter-generator/internal/gemini"
	"github.com/pep299/newsletter-generator/internal/handlers"
	"github.com/pep299/newsletter-generator/internal/newsletter"
	"github.com/pep299/newsletter-generator/internal/openai"
)

// modelNamer is implemented by the provider clients
type modelNamer interface {
	Model() string
}

// Application represents the application with all business logic components
type Application struct {
	Config  *config.Config
	Service *newsletter.Service
	Archive archive.Archive
	Server  *handlers.Server
	cleanup func() error
}

// New creates a new application instance with all dependencies
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Context archive (GCS when a bucket is set, memory otherwise)
	contextArchive, err := archive.New(ctx, cfg.ContextBucket, cfg.ArchiveRetention())
	if err != nil {
		return nil, fmt.Errorf("creating context archive: %w", err)
	}

	// Context store is optional
	var store newsletter.ContextStore
	if cfg.HasContextStore() {
		store = alchemyst.NewClient(cfg.AlchemystAPIKey, cfg.AlchemystBaseURL)
	} else {
		logger.Warn("ALCHEMYST_AI_API_KEY not set, context storage disabled")
	}

	generator, err := NewGenerator(ctx, cfg)
	if err != nil {
		contextArchive.Close()
		return nil, err
	}
	if generator == nil {
		logger.Warn("No generative-AI credentials configured, every newsletter will use the fallback template",
			zap.String("provider", cfg.LLMProvider))
	} else if named, ok := generator.(modelNamer); ok {
		logger.Info("Generation provider configured",
			zap.String("provider", cfg.LLMProvider),
			zap.String("model", named.Model()))
	}

	service := newsletter.NewService(store, contextArchive, generator, logger)
	server := handlers.NewServer(cfg, service, contextArchive, logger)

	return &Application{
		Config:  cfg,
		Service: service,
		Archive: contextArchive,
		Server:  server,
		cleanup: contextArchive.Close,
	}, nil
}

// NewGenerator builds the client for the configured provider. It returns a
// nil Generator when the provider has no API key.
func NewGenerator(ctx context.Context, cfg *config.Config) (newsletter.Generator, error) {
	if !cfg.HasGenerationCredentials() {
		return nil, nil
	}

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating OpenAI client: %w", err)
		}
		return client, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating Gemini client: %w", err)
		}
		return client, nil
	}
}

// Close cleans up application resources
func (a *Application) Close() error {
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
