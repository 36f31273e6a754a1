package newsletter

import (
	"fmt"
	"strings"

	"github.com/pep299/newsletter-generator/internal/model"
)

// Input is the trimmed set of fields that shape the newsletter text.
type Input struct {
	CompanyName string
	Audience    string
	Topic       string
	Tone        string
}

// InputFrom extracts the text fields of a request, trimmed.
func InputFrom(req model.NewsletterRequest) Input {
	t := req.Trimmed()
	return Input{
		CompanyName: t.CompanyName,
		Audience:    t.Audience,
		Topic:       t.Topic,
		Tone:        t.Tone,
	}
}

// Fallback builds the templated newsletter used whenever the model is
// unavailable or its answer cannot be used. It performs no I/O.
func Fallback(in Input) model.Newsletter {
	company := orDefault(in.CompanyName, "our team")
	audience := orDefault(in.Audience, "there")
	topic := orDefault(in.Topic, "the latest news")
	tone := orDefault(in.Tone, "regular")

	return model.Newsletter{
		Subject: fmt.Sprintf("Your %s update on %s", tone, topic),
		ShortBody: fmt.Sprintf("Hi %s, here's a quick update from %s on %s. Stay informed and ready to act with our insights.",
			audience, company, topic),
		LongBody: fmt.Sprintf(`Hi %s,

This edition of our %s newsletter from %s covers the most important developments in %s. We break down the changes, their impact on your business, and provide actionable strategies to help you stay ahead.

At %s, we're committed to delivering clarity and practical solutions. As %s, you'll find our perspectives designed to empower your decision-making and sharpen your competitive edge.

Thank you for staying connected with us. Your growth is at the core of what we do.`,
			audience, strings.ToLower(tone), company, topic, company, audience),
		CTA: fmt.Sprintf("Learn more with %s", company),
	}
}

// orDefault keeps Fallback total even for inputs that skipped validation.
func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
