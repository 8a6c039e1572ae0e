package driving

import (
	"context"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// NotebookEditor edits one open notebook and autosaves it.
// Mutations apply in issue order.
type NotebookEditor interface {
	// UpdateCellContent replaces a cell's text. Returns false if not found.
	UpdateCellContent(cellID, content string) bool

	// AddCell inserts a template cell after afterID, or appends when
	// afterID is empty or unknown.
	AddCell(cellType domain.CellType, afterID string) (domain.Cell, error)

	// DeleteCell removes a cell. The last remaining cell cannot be deleted.
	DeleteCell(cellID string) bool

	// MoveCellUp swaps a cell with its predecessor.
	MoveCellUp(cellID string) bool

	// MoveCellDown swaps a cell with its successor.
	MoveCellDown(cellID string) bool

	// ExecuteCell runs a code cell and attaches its output.
	ExecuteCell(ctx context.Context, cellID string) (domain.Cell, bool)

	// ExecuteAll runs every code cell and returns how many ran.
	ExecuteAll(ctx context.Context) int

	// Rename changes the notebook name.
	Rename(name string) bool

	// SetCollapsed toggles a cell's collapsed flag.
	SetCollapsed(cellID string, collapsed bool) bool

	// Save persists immediately and cancels any pending autosave.
	Save(ctx context.Context) error

	// ExportCurrent serialises the notebook as it is now.
	ExportCurrent(format domain.ExportFormat) (string, error)

	// Snapshot returns a deep copy of the notebook.
	Snapshot() domain.Notebook

	// State reports whether edits are waiting to be persisted.
	State() EditorState

	// IsExecuting reports whether the cell is running.
	IsExecuting(cellID string) bool

	// OnPersistError registers a callback for failed autosaves.
	OnPersistError(fn func(error))

	// Close stops the autosave timer and flushes pending edits.
	Close(ctx context.Context) error
}

// EditorState is the autosave state of an editor.
type EditorState string

// Editor states.
const (
	EditorClean EditorState = "clean"
	EditorDirty EditorState = "dirty"
)
