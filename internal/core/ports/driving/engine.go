package driving

import (
	"context"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// ExecutionEngine runs code cell source.
type ExecutionEngine interface {
	// Execute runs source and reports captured output or the failure
	// message. It never returns an error and never panics.
	Execute(ctx context.Context, source string) domain.ExecutionResult

	// Configure applies new timeout and rate settings to later executions.
	Configure(settings domain.ExecutionSettings)
}
