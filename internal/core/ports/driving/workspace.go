package driving

import (
	"context"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// WorkspaceService manages the notebook collection.
type WorkspaceService interface {
	// Load reads the collection from storage. An active pointer naming a
	// missing notebook is dropped.
	Load(ctx context.Context) error

	// List returns notebooks, most recently updated first.
	List() []domain.Notebook

	// Get returns a notebook by ID.
	Get(id string) (domain.Notebook, error)

	// Active returns the active notebook, if any.
	Active() (domain.Notebook, bool)

	// Create adds a seeded notebook, makes it active and saves.
	Create(ctx context.Context, name string) (domain.Notebook, error)

	// Select makes a notebook active.
	Select(ctx context.Context, id string) error

	// Delete removes a notebook. Deleting the active notebook selects a
	// replacement.
	Delete(ctx context.Context, id string) error

	// SaveNotebook stores an updated notebook and persists the collection.
	SaveNotebook(ctx context.Context, nb domain.Notebook) error

	// Import parses an export, adds it as a new notebook and saves.
	Import(ctx context.Context, data []byte, format domain.ExportFormat) (domain.Notebook, error)

	// Open returns an editor bound to a notebook.
	Open(id string) (NotebookEditor, error)
}
