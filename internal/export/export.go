package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"

	"github.com/pep299/newsletter-generator/internal/model"
)

// Supported export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ErrUnsupportedFormat is returned for any format other than markdown or html
var ErrUnsupportedFormat = errors.New("unsupported export format")

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// Markdown renders the newsletter as a Markdown document
func Markdown(n model.Newsletter) string {
	return fmt.Sprintf("# %s\n\n%s\n\n%s\n\n**Call to Action:** %s\n", n.Subject, n.ShortBody, n.LongBody, n.CTA)
}

var md = goldmark.New()

var pageTemplate = template.Must(template.New("newsletter").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width" />
    <title>{{.Subject}}</title>
    <style>
      body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif; line-height:1.55; margin:0; padding:24px; color:#111; background:#fff; }
      .container { max-width: 680px; margin: 0 auto; }
      h1 { font-size: 24px; margin: 0 0 16px; }
      p { margin: 0 0 12px; }
      .cta { display:inline-block; margin-top:16px; padding:12px 16px; background:#0ea5e9; color:#fff; text-decoration:none; border-radius:6px; }
    </style>
  </head>
  <body>
    <main class="container">
      <h1>{{.Subject}}</h1>
      {{.ShortBody}}
      <br />
      {{.LongBody}}
      <p><a class="cta" href="#">{{.CTA}}</a></p>
    </main>
  </body>
</html>
`))

// HTML renders the newsletter as a standalone HTML email draft. Body text is
// split into paragraphs on blank lines; the text itself is never parsed as
// Markdown.
func HTML(n model.Newsletter) (string, error) {
	shortBody, err := renderBody(n.ShortBody)
	if err != nil {
		return "", fmt.Errorf("rendering short body: %w", err)
	}
	longBody, err := renderBody(n.LongBody)
	if err != nil {
		return "", fmt.Errorf("rendering long body: %w", err)
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Subject   string
		ShortBody template.HTML
		LongBody  template.HTML
		CTA       string
	}{
		Subject:   n.Subject,
		ShortBody: shortBody,
		LongBody:  longBody,
		CTA:       n.CTA,
	})
	if err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// Render dispatches on format
func Render(n model.Newsletter, format string) (body string, contentType string, err error) {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return Markdown(n), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		out, err := HTML(n)
		if err != nil {
			return "", "", err
		}
		return out, "text/html; charset=utf-8", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// renderBody turns each blank-line separated block into a paragraph holding
// the block as literal, escaped text
func renderBody(body string) (template.HTML, error) {
	doc := ast.NewDocument()
	for _, block := range paragraphBreak.Split(body, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		text := ast.NewString([]byte(block))
		text.SetRaw(true)

		paragraph := ast.NewParagraph()
		paragraph.AppendChild(paragraph, text)
		doc.AppendChild(doc, paragraph)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, nil, doc); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
