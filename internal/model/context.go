package model

import "time"

// Fixed tagging for uploaded context documents
const (
	ContextTypeResource = "resource"
	ContextSourceUpload = "web-upload"
	ContextScopeDefault = "internal"
)

// Similarity thresholds used when searching the context store
const (
	SimilarityThreshold        = 0.8
	MinimumSimilarityThreshold = 0.5
)

// ContextDocument is a canonical context document ready to be stored.
type ContextDocument struct {
	Content      string    `json:"content"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	LastModified time.Time `json:"lastModified"`
	FileSize     int       `json:"fileSize"`
}

// ContextQuery is a similarity search against the context store.
type ContextQuery struct {
	Query                      string
	SimilarityThreshold        float64
	MinimumSimilarityThreshold float64
	Scope                      string
}

// NewContextQuery builds a query with the default thresholds and scope
func NewContextQuery(query string) ContextQuery {
	return ContextQuery{
		Query:                      query,
		SimilarityThreshold:        SimilarityThreshold,
		MinimumSimilarityThreshold: MinimumSimilarityThreshold,
		Scope:                      ContextScopeDefault,
	}
}
