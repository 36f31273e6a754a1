package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/pep299/newsletter-generator/internal/model"
)

// ErrUnavailable is returned by mocks configured to fail
var ErrUnavailable = errors.New("mock: service unavailable")

// MockContextStore records calls and returns canned snippets
type MockContextStore struct {
	mu sync.Mutex

	Snippets  []model.ContextSnippet
	AddErr    error
	SearchErr error

	AddCalls    int
	SearchCalls int
	Documents   []model.ContextDocument
	Queries     []model.ContextQuery
}

func (m *MockContextStore) AddContext(ctx context.Context, doc model.ContextDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	m.Documents = append(m.Documents, doc)
	return m.AddErr
}

func (m *MockContextStore) SearchContext(ctx context.Context, query model.ContextQuery) ([]model.ContextSnippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls++
	m.Queries = append(m.Queries, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Snippets, nil
}

// Calls returns the total number of calls made to the store
func (m *MockContextStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AddCalls + m.SearchCalls
}

// MockGenerator returns Raw or Err and remembers prompts. With Block set it
// waits for the context to end and returns its error.
type MockGenerator struct {
	mu sync.Mutex

	Raw   string
	Err   error
	Panic any
	Block bool

	Prompts []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Raw, nil
}

// Calls returns how many prompts were sent
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// MockArchive keeps documents in a slice
type MockArchive struct {
	mu sync.Mutex

	Err       error
	Documents []model.ContextDocument
}

func (m *MockArchive) Put(ctx context.Context, doc model.ContextDocument) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Documents = append(m.Documents, doc)
	return "archived-" + doc.FileName, nil
}
