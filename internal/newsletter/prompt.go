package newsletter

import (
	"fmt"
	"strings"
)

// BuildPrompt assembles the generation prompt. The output-format block must
// stay in sync with ParseAndValidate: the parser has no recovery beyond fallback.
func BuildPrompt(in Input, contextText string) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("You are a professional B2B newsletter writer for %q.\n", in.CompanyName))

	if strings.TrimSpace(contextText) != "" {
		content.WriteString("Use the following company information as primary reference:\n\n")
		content.WriteString(contextText)
		content.WriteString("\n\nIf this information is insufficient, rely on your own knowledge.\n")
	} else {
		content.WriteString("No stored company information is available; rely on your own knowledge.\n")
	}

	content.WriteString(fmt.Sprintf("Audience: %s\n", in.Audience))
	content.WriteString(fmt.Sprintf("Topic: %s\n", in.Topic))
	content.WriteString(fmt.Sprintf("Tone: %s.\n\n", in.Tone))

	content.WriteString("Return ONLY a strict JSON object with the following structure:\n\n")
	content.WriteString("{\n")
	content.WriteString("  \"subject\": \"A compelling newsletter subject line, max 10 words, plain text\",\n")
	content.WriteString("  \"shortBody\": \"50-100 word professional newsletter text. Smooth, natural, no headings, no numbers, no bullet points, no meta commentary.\",\n")
	content.WriteString("  \"longBody\": \"150-200 word expanded newsletter text. Smooth, professional, no headings, no numbers, no bullet points, no meta commentary.\",\n")
	content.WriteString("  \"cta\": \"A single strong call-to-action sentence, e.g., 'Schedule a demo today.'\"\n")
	content.WriteString("}\n\n")
	content.WriteString("Do not include anything else outside this JSON. No explanations, no greetings, no headings, no numbered lists, no bullet points, no code blocks or code fences.\n")

	return content.String()
}
