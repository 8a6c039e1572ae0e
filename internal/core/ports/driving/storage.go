package driving

import (
	"context"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// NotebookStorage persists the notebook collection and renders exports.
type NotebookStorage interface {
	// Save writes the whole collection and the active pointer. When the
	// primary store refuses, the fallback store is tried; when both refuse,
	// domain.ErrStorageExhausted is returned.
	Save(ctx context.Context, state domain.NotebookState) error

	// Load reads the collection. It never fails: unreadable data yields an
	// empty state.
	Load(ctx context.Context) domain.NotebookState

	// SetActiveNotebook writes only the active pointer, best effort.
	SetActiveNotebook(ctx context.Context, id string)

	// CreateNotebook builds a seeded notebook. It is not persisted.
	CreateNotebook(name string) domain.Notebook

	// ExportNotebook serialises a notebook in the given format.
	ExportNotebook(nb domain.Notebook, format domain.ExportFormat) (string, error)

	// ImportNotebook parses a json or ipynb export into a new notebook.
	ImportNotebook(data []byte, format domain.ExportFormat) (domain.Notebook, error)

	// DownloadFile hands content to the file sink and returns its location.
	DownloadFile(ctx context.Context, content, filename, mimeType string) (string, error)

	// ExportFilename derives a safe file name for an export.
	ExportFilename(name string, format domain.ExportFormat) string
}
