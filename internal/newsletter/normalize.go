package newsletter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pep299/newsletter-generator/internal/model"
)

// OutcomeKind tags the result of ParseAndValidate
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeParseFailed
	OutcomeSchemaInvalid
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeParseFailed:
		return "parse_failed"
	case OutcomeSchemaInvalid:
		return "schema_invalid"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of normalizing a raw model answer.
// Newsletter is only meaningful when Kind is OutcomeOK.
type Outcome struct {
	Kind       OutcomeKind
	Newsletter model.Newsletter
	Err        error
}

var (
	openingFence = regexp.MustCompile("(?i)^[\\s`]*```json[\\s`]*")
	closingFence = regexp.MustCompile("(?i)[\\s`]*```$")
)

var requiredFields = []string{"subject", "shortBody", "longBody", "cta"}

// StripCodeFence removes a leading ```json marker and a trailing ``` marker.
func StripCodeFence(raw string) string {
	cleaned := openingFence.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ParseAndValidate strips fences, parses JSON and checks the four required
// string fields. No partial recovery is attempted.
func ParseAndValidate(raw string) Outcome {
	cleaned := StripCodeFence(raw)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return Outcome{
			Kind: OutcomeParseFailed,
			Err:  fmt.Errorf("%w: parsing model output: %v", ErrResponseFormat, err),
		}
	}

	parsed, ok := decoded.(map[string]any)
	if !ok {
		return Outcome{
			Kind: OutcomeSchemaInvalid,
			Err:  fmt.Errorf("%w: model output is %T, not an object", ErrResponseFormat, decoded),
		}
	}

	values := make(map[string]string, len(requiredFields))
	var problems []string
	for _, field := range requiredFields {
		v, ok := parsed[field]
		if !ok {
			problems = append(problems, field+" missing")
			continue
		}
		s, ok := v.(string)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s is %T, not string", field, v))
			continue
		}
		if strings.TrimSpace(s) == "" {
			problems = append(problems, field+" empty")
			continue
		}
		values[field] = s
	}

	if len(problems) > 0 {
		return Outcome{
			Kind: OutcomeSchemaInvalid,
			Err:  fmt.Errorf("%w: %s", ErrResponseFormat, strings.Join(problems, ", ")),
		}
	}

	return Outcome{
		Kind: OutcomeOK,
		Newsletter: model.Newsletter{
			Subject:   values["subject"],
			ShortBody: values["shortBody"],
			LongBody:  values["longBody"],
			CTA:       values["cta"],
		},
	}
}
