package alchemyst

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/newsletter-generator/internal/model"
)

// DefaultBaseURL is the public Alchemyst platform endpoint
const DefaultBaseURL = "https://platform-backend.getalchemystai.com"

// Client handles Alchemyst AI context API operations
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Alchemyst context client
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the context API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alchemyst API request failed with status %d: %s", e.StatusCode, e.Body)
}

// addRequest is the body of POST /api/v1/context/add
type addRequest struct {
	Documents   []document  `json:"documents"`
	ContextType string      `json:"context_type"`
	Source      string      `json:"source"`
	Scope       string      `json:"scope"`
	Metadata    addMetadata `json:"metadata"`
}

type document struct {
	Content string `json:"content"`
}

type addMetadata struct {
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	LastModified string `json:"lastModified"`
	FileSize     int    `json:"fileSize"`
}

// searchRequest is the body of POST /api/v1/context/search
type searchRequest struct {
	Query                      string         `json:"query"`
	SimilarityThreshold        float64        `json:"similarity_threshold"`
	MinimumSimilarityThreshold float64        `json:"minimum_similarity_threshold"`
	Scope                      string         `json:"scope"`
	Metadata                   map[string]any `json:"metadata"`
}

type searchResponse struct {
	Contexts []model.ContextSnippet `json:"contexts"`
}

// AddContext stores a document in the context store
func (c *Client) AddContext(ctx context.Context, doc model.ContextDocument) error {
	req := addRequest{
		Documents:   []document{{Content: doc.Content}},
		ContextType: model.ContextTypeResource,
		Source:      model.ContextSourceUpload,
		Scope:       model.ContextScopeDefault,
		Metadata: addMetadata{
			FileName:     doc.FileName,
			FileType:     doc.FileType,
			LastModified: doc.LastModified.UTC().Format(time.RFC3339Nano),
			FileSize:     doc.FileSize,
		},
	}

	resp, err := c.post(ctx, "/api/v1/context/add", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The success token is opaque
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// SearchContext returns snippets related to the query, in provider order
func (c *Client) SearchContext(ctx context.Context, query model.ContextQuery) ([]model.ContextSnippet, error) {
	scope := query.Scope
	if scope == "" {
		scope = model.ContextScopeDefault
	}

	req := searchRequest{
		Query:                      query.Query,
		SimilarityThreshold:        query.SimilarityThreshold,
		MinimumSimilarityThreshold: query.MinimumSimilarityThreshold,
		Scope:                      scope,
		Metadata:                   map[string]any{},
	}

	resp, err := c.post(ctx, "/api/v1/context/search", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	return searchResp.Contexts, nil
}

// post sends a JSON request and returns the response when the status is 2xx
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	return resp, nil
}
