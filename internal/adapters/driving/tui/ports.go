// Package tui provides an interactive terminal user interface for marinebook.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Workspace manages the notebook collection and opens editors.
	Workspace driving.WorkspaceService

	// Storage writes exports. Optional; export is disabled without it.
	Storage driving.NotebookStorage

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(workspace driving.WorkspaceService, storage driving.NotebookStorage, settings driving.SettingsService) *Ports {
	return &Ports{
		Workspace: workspace,
		Storage:   storage,
		Settings:  settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Workspace == nil {
		return ErrMissingWorkspace
	}
	return nil
}
