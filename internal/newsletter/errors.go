package newsletter

import (
	"errors"
	"fmt"
)

// Client-facing validation messages
const (
	MsgMissingFields = "Missing required fields or file"
	MsgEmptyFile     = "Cannot process an empty file."
	MsgInvalidJSON   = "File content must be valid JSON"
	MsgNotJSONFile   = "File must be a JSON document (application/json)"
)

// Collaborator failures are wrapped with these sentinels. They are recovered
// inside the pipeline and never reach the caller.
var (
	ErrContextService    = errors.New("context service error")
	ErrGenerationService = errors.New("generation service error")
	ErrResponseFormat    = errors.New("response format error")
)

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FaultError is an unexpected failure after validation has passed.
type FaultError struct {
	Details string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("unhandled fault: %s", e.Details)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
