// Package notebooks provides the notebook collection view for the TUI.
package notebooks

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

// mode is the interaction mode of the view.
type mode int

const (
	modeBrowse mode = iota
	modeCreate
	modeConfirmDelete
)

// View lists notebooks and lets the user create, delete and open them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	workspace driving.WorkspaceService

	list   *list.NotebookList
	prompt *input.PromptInput
	mode   mode

	pendingDelete string
	err           error

	width  int
	height int
	ready  bool
}

// NewView creates a notebook list view.
func NewView(s *styles.Styles, workspace driving.WorkspaceService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:    s,
		keymap:    keymap.DefaultKeyMap(),
		workspace: workspace,
		list:      list.NewNotebookList(s),
		prompt:    input.NewPromptInput(s, "Name:", "Untitled Notebook"),
		width:     80,
		height:    24,
	}
}

// Init refreshes the list from the workspace.
func (v *View) Init() tea.Cmd {
	return v.refresh()
}

func (v *View) refresh() tea.Cmd {
	ws := v.workspace
	return func() tea.Msg {
		if ws == nil {
			return messages.NotebooksLoaded{Err: fmt.Errorf("workspace not configured")}
		}
		active, _ := ws.Active()
		return messages.NotebooksLoaded{Notebooks: ws.List(), ActiveID: active.ID}
	}
}

// Update handles messages for the notebook list.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.NotebooksLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetNotebooks(msg.Notebooks, msg.ActiveID)
		}
		return v, nil

	case messages.NotebookCreated:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		id := msg.Notebook.ID
		return v, tea.Batch(v.refresh(), func() tea.Msg {
			return messages.NotebookSelected{ID: id}
		})

	case messages.NotebookDeleted:
		v.err = msg.Err
		return v, v.refresh()

	case tea.KeyMsg:
		switch v.mode {
		case modeCreate:
			return v.handleCreateKey(msg)
		case modeConfirmDelete:
			return v.handleConfirmKey(msg)
		case modeBrowse:
			return v.handleBrowseKey(msg)
		}
	}

	return v, nil
}

func (v *View) handleBrowseKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }

	case keymap.Matches(k, v.keymap.New):
		v.mode = modeCreate
		v.err = nil
		v.prompt.Reset()
		return v, v.prompt.Focus()

	case keymap.Matches(k, v.keymap.Delete):
		if nb, ok := v.list.Selected(); ok {
			v.mode = modeConfirmDelete
			v.pendingDelete = nb.ID
		}
		return v, nil

	case keymap.Matches(k, v.keymap.Select):
		nb, ok := v.list.Selected()
		if !ok {
			return v, nil
		}
		return v, v.selectNotebook(nb.ID)
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) handleCreateKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = modeBrowse
		v.prompt.Blur()
		return v, nil
	case "enter":
		name := strings.TrimSpace(v.prompt.Value())
		v.mode = modeBrowse
		v.prompt.Blur()
		return v, v.createNotebook(name)
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	id := v.pendingDelete
	v.mode = modeBrowse
	v.pendingDelete = ""
	if msg.String() != "y" {
		return v, nil
	}
	return v, v.deleteNotebook(id)
}

func (v *View) createNotebook(name string) tea.Cmd {
	ws := v.workspace
	return func() tea.Msg {
		nb, err := ws.Create(context.Background(), name)
		return messages.NotebookCreated{Notebook: nb, Err: err}
	}
}

func (v *View) deleteNotebook(id string) tea.Cmd {
	ws := v.workspace
	return func() tea.Msg {
		return messages.NotebookDeleted{ID: id, Err: ws.Delete(context.Background(), id)}
	}
}

func (v *View) selectNotebook(id string) tea.Cmd {
	ws := v.workspace
	return func() tea.Msg {
		if err := ws.Select(context.Background(), id); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.NotebookSelected{ID: id}
	}
}

// View renders the notebook list.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Notebooks"))
	b.WriteString("\n\n")
	b.WriteString(v.list.View())
	b.WriteString("\n\n")

	switch v.mode {
	case modeCreate:
		b.WriteString(v.prompt.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[Enter] Create  [Esc] Cancel"))
	case modeConfirmDelete:
		name := v.pendingDelete
		if nb, ok := v.list.Selected(); ok {
			name = nb.Name
		}
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %q? [y/N]", name)))
	case modeBrowse:
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Help.Render("[Enter] Open  [n] New  [d] Delete  [Esc] Back"))
	}

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetSize(width, height-8)
	v.prompt.SetWidth(width)
}

// Prompting reports whether the view is collecting text input.
func (v *View) Prompting() bool {
	return v.mode != modeBrowse
}

// Err returns the last error shown by the view.
func (v *View) Err() error {
	return v.err
}
