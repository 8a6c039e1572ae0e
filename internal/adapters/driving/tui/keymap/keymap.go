// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Select confirms a selection.
	Select key.Binding

	// New creates a notebook.
	New key.Binding

	// Delete removes the selected notebook or cell.
	Delete key.Binding

	// Edit starts editing the selected cell.
	Edit key.Binding

	// Run executes the selected code cell.
	Run key.Binding

	// RunAll executes every code cell.
	RunAll key.Binding

	// AddCode inserts a code cell below the selection.
	AddCode key.Binding

	// AddMarkdown inserts a markdown cell below the selection.
	AddMarkdown key.Binding

	// MoveUp moves the selected cell up.
	MoveUp key.Binding

	// MoveDown moves the selected cell down.
	MoveDown key.Binding

	// Collapse toggles the selected cell's output.
	Collapse key.Binding

	// Save persists the notebook now.
	Save key.Binding

	// Export writes the notebook as Markdown to the export directory.
	Export key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Run: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "run"),
		),
		RunAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "run all"),
		),
		AddCode: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add code"),
		),
		AddMarkdown: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add markdown"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "collapse"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// NotebooksHelp returns keybindings for the notebook list.
func (k *KeyMap) NotebooksHelp() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Delete, k.Back}
}

// EditorHelp returns keybindings for the notebook editor.
func (k *KeyMap) EditorHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Run, k.RunAll, k.AddCode, k.AddMarkdown, k.Save, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.New, k.Delete, k.Edit, k.Collapse},
		{k.Run, k.RunAll, k.AddCode, k.AddMarkdown},
		{k.MoveUp, k.MoveDown, k.Save, k.Export},
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
