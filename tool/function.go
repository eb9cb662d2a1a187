package tool

import (
	"context"
	"errors"

	"github.com/hupe1980/tripflow/internal/schema"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tripflow tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *Error with consistent
//     codes: CodeValidation for schema mismatches, CodeExecution for plain
//     errors; *Error returned by the function is forwarded unchanged.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return NewFunctionTool(name, description, schema.Create(structType), fn)
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation failures are not recoverable: retrying
// the same bad arguments against a different tool cannot help.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	if err := schema.Validate(args, t.parameters); err != nil {
		return "", &Error{Tool: t.name, Message: err.Error(), Code: CodeValidation}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			return "", te
		}
		return "", &Error{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}

	return result, nil
}
