// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewNotebooks lists notebooks.
	ViewNotebooks
	// ViewEditor edits one notebook.
	ViewEditor
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewNotebooks:
		return "notebooks"
	case ViewEditor:
		return "editor"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// NotebooksLoaded carries the notebook list.
type NotebooksLoaded struct {
	Notebooks []domain.Notebook
	ActiveID  string
	Err       error
}

// NotebookCreated signals a notebook was created.
type NotebookCreated struct {
	Notebook domain.Notebook
	Err      error
}

// NotebookDeleted signals a notebook was removed.
type NotebookDeleted struct {
	ID  string
	Err error
}

// NotebookSelected asks the app to open a notebook in the editor.
type NotebookSelected struct {
	ID string
}

// NotebookClosed signals the editor flushed and released its notebook.
type NotebookClosed struct {
	ID  string
	Err error
}

// CellExecuted carries the cell after a run.
type CellExecuted struct {
	Cell domain.Cell
	OK   bool
}

// AllCellsExecuted signals a run-all finished.
type AllCellsExecuted struct {
	Count int
}

// NotebookSaved signals an explicit save finished.
type NotebookSaved struct {
	Err error
}

// NotebookExported carries the path an export was written to.
type NotebookExported struct {
	Path string
	Err  error
}

// PersistFailed signals a background autosave failed.
type PersistFailed struct {
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Key string
	Err error
}
