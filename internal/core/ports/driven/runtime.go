package driven

import (
	"context"
	"io"
)

// RunResult is what a script evaluation produced besides printed output.
type RunResult struct {
	// Value is the value of the final expression statement.
	Value any

	// HasValue is false when the script ended with a statement rather than
	// an expression, or the expression had no usable value.
	HasValue bool
}

// ScriptRuntime evaluates notebook code.
type ScriptRuntime interface {
	// Run evaluates source with the marine helpers in scope. Everything the
	// script prints goes to stdout, which belongs to this call only.
	// Compile errors, panics and context expiry are returned as errors.
	Run(ctx context.Context, source string, stdout io.Writer) (RunResult, error)
}
