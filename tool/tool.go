// Package tool implements the capability boundary that lets agents invoke
// external services (search, market data, currency conversion) with a uniform
// call/response contract, explicit error classification and ordered fallback
// chains.
package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tripflow/internal/schema"
)

// Tool is a single external capability. Implementations declare their own
// request shape via Parameters and classify failures through the error types
// below.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Return *Error with an accurate Recoverable classification
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is forwarded to the reasoning capability to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. The context bounds the attempt; exceeding it is
	// a recoverable error from the chain's perspective.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Error classification codes.
const (
	// CodeMissingCredential marks an attempt aborted for lack of an API key.
	CodeMissingCredential = "MISSING_CREDENTIAL"
	// CodeNetwork marks transport level failures including timeouts.
	CodeNetwork = "NETWORK"
	// CodeHTTPStatus marks a non-2xx upstream response.
	CodeHTTPStatus = "HTTP_STATUS"
	// CodeMalformedResponse marks an upstream body that failed to decode.
	CodeMalformedResponse = "MALFORMED_RESPONSE"
	// CodeMissingField marks a well-formed response lacking the expected field.
	CodeMissingField = "MISSING_FIELD"
	// CodeValidation marks arguments rejected by the tool's schema.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution marks any other execution failure.
	CodeExecution = "EXECUTION_ERROR"
)

// Error is the uniform failure type for tool attempts. Recoverable errors
// drive the fallback chain; value errors (Recoverable == false with
// CodeMissingField) surface immediately unless the next tool in the chain is
// declared an equivalent capability.
type Error struct {
	Tool        string `json:"tool"`
	Message     string `json:"message"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewRecoverableError builds an Error that the fallback chain may absorb.
func NewRecoverableError(tool, code, message string) *Error {
	return &Error{Tool: tool, Message: message, Code: code, Recoverable: true}
}

// NewValueError builds an Error for a well-formed response missing the
// expected field. It stops a fallback chain unless the next tool is an
// equivalent capability.
func NewValueError(tool, message string) *Error {
	return &Error{Tool: tool, Message: message, Code: CodeMissingField}
}

// IsRecoverable reports whether err is a tool error the chain may absorb.
// Context timeouts on an attempt count as recoverable network failures.
func IsRecoverable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Recoverable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}

// ValidationError is re-exported so tool consumers can type-assert argument
// validation failures without importing the internal package.
type ValidationError = schema.ValidationError
