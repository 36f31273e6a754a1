package newsletter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pep299/newsletter-generator/internal/mocks"
	"github.com/pep299/newsletter-generator/internal/model"
)

const validAnswer = `{"subject":"AI moves fast","shortBody":"Short text.","longBody":"Long text.","cta":"Book a call."}`

func techCorpRequest() model.NewsletterRequest {
	return model.NewsletterRequest{
		CompanyName: "TechCorp",
		Audience:    "Startup founders",
		Topic:       "AI in SaaS",
		Tone:        "Professional",
		ContextFile: &model.ContextFile{
			Name:     "techcorp.json",
			MimeType: "application/json",
			Data:     []byte(`{"company":"TechCorp","product":"Analytics"}`),
		},
	}
}

func TestValidate(t *testing.T) {
	full := techCorpRequest()

	tests := []struct {
		name        string
		mutate      func(*model.NewsletterRequest)
		requireFile bool
		message     string
		fields      []string
	}{
		{"complete request", func(r *model.NewsletterRequest) {}, true, "", nil},
		{"missing company", func(r *model.NewsletterRequest) { r.CompanyName = "" }, true, MsgMissingFields, []string{"companyName"}},
		{"whitespace tone", func(r *model.NewsletterRequest) { r.Tone = "   " }, true, MsgMissingFields, []string{"tone"}},
		{"missing file required", func(r *model.NewsletterRequest) { r.ContextFile = nil }, true, MsgMissingFields, []string{"file"}},
		{"missing file optional", func(r *model.NewsletterRequest) { r.ContextFile = nil }, false, "", nil},
		{"empty file", func(r *model.NewsletterRequest) { r.ContextFile.Data = nil }, true, MsgEmptyFile, []string{"file"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := full
			file := *full.ContextFile
			req.ContextFile = &file
			test.mutate(&req)

			err := Validate(req, test.requireFile)
			if test.message == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, test.message, validationErr.Message)
			assert.Equal(t, test.fields, validationErr.Fields)
		})
	}
}

func TestGenerateValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.NewsletterRequest)
		message string
	}{
		{"missing audience", func(r *model.NewsletterRequest) { r.Audience = "" }, MsgMissingFields},
		{"empty file", func(r *model.NewsletterRequest) { r.ContextFile.Data = []byte{} }, MsgEmptyFile},
		{"non json file", func(r *model.NewsletterRequest) { r.ContextFile.Data = []byte("name: TechCorp") }, MsgInvalidJSON},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := &mocks.MockContextStore{}
			generator := &mocks.MockGenerator{Raw: validAnswer}
			archive := &mocks.MockArchive{}
			service := NewService(store, archive, generator, zap.NewNop())

			req := techCorpRequest()
			test.mutate(&req)

			result, err := service.Generate(context.Background(), req)

			assert.Nil(t, result)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			assert.EqualError(t, err, test.message)
			assert.Zero(t, store.Calls())
			assert.Zero(t, generator.Calls())
			assert.Empty(t, archive.Documents)
		})
	}
}

func TestGenerateWithoutGenerator(t *testing.T) {
	store := &mocks.MockContextStore{}
	service := NewService(store, nil, nil, zap.NewNop())
	req := techCorpRequest()

	result, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, "no generative-AI credentials configured", result.FallbackReason)
	assert.Equal(t, Fallback(InputFrom(req)), result.Newsletter)
	assert.Contains(t, result.Newsletter.Subject, "Professional")
	assert.Contains(t, result.Newsletter.Subject, "AI in SaaS")
	assert.Contains(t, result.Newsletter.CTA, "TechCorp")
	assert.Equal(t, 1, store.AddCalls, "context is still ingested")
	assert.Zero(t, store.SearchCalls)
}

func TestGenerateUsesModelAnswerVerbatim(t *testing.T) {
	store := &mocks.MockContextStore{Snippets: []model.ContextSnippet{{Content: "TechCorp sells analytics."}}}
	generator := &mocks.MockGenerator{Raw: "```json\n" + validAnswer + "\n```"}
	service := NewService(store, nil, generator, zap.NewNop())

	result, err := service.Generate(context.Background(), techCorpRequest())
	require.NoError(t, err)

	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, model.Newsletter{
		Subject:   "AI moves fast",
		ShortBody: "Short text.",
		LongBody:  "Long text.",
		CTA:       "Book a call.",
	}, result.Newsletter)

	require.Len(t, generator.Prompts, 1)
	assert.Contains(t, generator.Prompts[0], "TechCorp sells analytics.")
	assert.Equal(t, RetrievalFound, result.Retrieval.Status)
	assert.Equal(t, IngestStored, result.Ingest.Status)
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		generator *mocks.MockGenerator
		reason    string
	}{
		{"generation error", &mocks.MockGenerator{Err: mocks.ErrUnavailable}, "generation failed"},
		{"unparseable answer", &mocks.MockGenerator{Raw: "Dear founders, here is your newsletter."}, "parse_failed"},
		{"missing field", &mocks.MockGenerator{Raw: `{"subject":"S","shortBody":"B","longBody":"L"}`}, "schema_invalid"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			service := NewService(&mocks.MockContextStore{}, nil, test.generator, zap.NewNop())
			req := techCorpRequest()

			first, err := service.Generate(context.Background(), req)
			require.NoError(t, err)
			second, err := service.Generate(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, SourceFallback, first.Source)
			assert.Equal(t, test.reason, first.FallbackReason)
			assert.Equal(t, Fallback(InputFrom(req)), first.Newsletter)
			assert.Equal(t, first.Newsletter, second.Newsletter)
		})
	}
}

func TestGenerateSurvivesContextStoreFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &mocks.MockContextStore{AddErr: mocks.ErrUnavailable, SearchErr: mocks.ErrUnavailable}
	generator := &mocks.MockGenerator{Raw: validAnswer}
	service := NewService(store, nil, generator, zap.New(core))

	result, err := service.Generate(context.Background(), techCorpRequest())
	require.NoError(t, err)

	assert.True(t, result.Newsletter.Valid())
	assert.Equal(t, SourceModel, result.Source)
	assert.Equal(t, IngestFailed, result.Ingest.Status)
	assert.Equal(t, RetrievalFailed, result.Retrieval.Status)
	assert.Contains(t, generator.Prompts[0], "No stored company information is available")

	assert.Equal(t, 1, logs.FilterMessageSnippet("Failed to add context").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("Context search failed").Len())
}

func TestGenerateWithoutFile(t *testing.T) {
	store := &mocks.MockContextStore{}
	generator := &mocks.MockGenerator{Raw: validAnswer}
	service := NewService(store, nil, generator, zap.NewNop())

	req := techCorpRequest()
	req.ContextFile = nil

	result, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, result.Ingest)
	assert.Zero(t, store.AddCalls)
	assert.Equal(t, 1, store.SearchCalls)
}

func TestGenerateTrimsInputs(t *testing.T) {
	generator := &mocks.MockGenerator{Raw: validAnswer}
	service := NewService(nil, nil, generator, zap.NewNop())

	req := techCorpRequest()
	req.CompanyName = "  TechCorp  "
	req.Topic = "\tAI in SaaS\n"

	_, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, generator.Prompts[0], `"TechCorp"`)
	assert.Contains(t, generator.Prompts[0], "Topic: AI in SaaS\n")
}

func TestGenerateRecoversFault(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	generator := &mocks.MockGenerator{Panic: "boom"}
	service := NewService(nil, nil, generator, zap.New(core))

	result, err := service.Generate(context.Background(), techCorpRequest())

	assert.Nil(t, result)
	var faultErr *FaultError
	require.True(t, errors.As(err, &faultErr))
	assert.Equal(t, "boom", faultErr.Details)
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, logs.Len())
	assert.True(t, strings.Contains(logs.All()[0].Message, "Unhandled fault"))
}
