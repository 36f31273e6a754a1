package model

import (
	"strings"
)

// NewsletterRequest carries one generation request as submitted by the UI.
type NewsletterRequest struct {
	CompanyName string
	Audience    string
	Topic       string
	Tone        string
	ContextFile *ContextFile
}

// ContextFile is an uploaded context document
type ContextFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// Newsletter is the generated result. All four fields are non-empty on every path.
type Newsletter struct {
	Subject   string `json:"subject"`
	ShortBody string `json:"shortBody"`
	LongBody  string `json:"longBody"`
	CTA       string `json:"cta"`
}

// ContextSnippet is a single search hit returned by the context store
type ContextSnippet struct {
	Content string `json:"content"`
}

// Trimmed returns a copy of the request with surrounding whitespace removed
// from every text field.
func (r NewsletterRequest) Trimmed() NewsletterRequest {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Audience = strings.TrimSpace(r.Audience)
	r.Topic = strings.TrimSpace(r.Topic)
	r.Tone = strings.TrimSpace(r.Tone)
	return r
}

// MissingFields lists the required text fields that are empty after trimming.
func (r NewsletterRequest) MissingFields() []string {
	t := r.Trimmed()
	var missing []string
	if t.CompanyName == "" {
		missing = append(missing, "companyName")
	}
	if t.Audience == "" {
		missing = append(missing, "audience")
	}
	if t.Topic == "" {
		missing = append(missing, "topic")
	}
	if t.Tone == "" {
		missing = append(missing, "tone")
	}
	return missing
}

// Valid reports whether every field is non-empty
func (n Newsletter) Valid() bool {
	return strings.TrimSpace(n.Subject) != "" &&
		strings.TrimSpace(n.ShortBody) != "" &&
		strings.TrimSpace(n.LongBody) != "" &&
		strings.TrimSpace(n.CTA) != ""
}
