package mcp

import (
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Workspace manages the notebook collection and opens editors.
	Workspace driving.WorkspaceService

	// Storage provides export filenames.
	Storage driving.NotebookStorage
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Workspace == nil {
		return ErrMissingWorkspace
	}
	// Storage is optional; export filenames fall back to the notebook ID.
	return nil
}
