package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/views/editor"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/views/notebooks"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	statusBar     *status.Bar
	menuView      *menu.View
	notebooksView *notebooks.View
	editorView    *editor.View
	settingsView  *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is restored when leaving help.
	previousView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		statusBar:     status.NewBar(s, km),
		menuView:      menu.NewView(s),
		notebooksView: notebooks.NewView(s, ports.Workspace),
		editorView:    editor.NewView(s, ports.Storage),
		settingsView:  settings.NewView(s, ports.Settings),
		currentView:   messages.ViewMenu,
	}
	if nb, ok := ports.Workspace.Active(); ok {
		a.menuView.SetActiveNotebook(nb.Name)
	}
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("marinebook"),
		a.notebooksView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo,funlen // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		a.statusBar, cmd = a.statusBar.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.Quit:
		return a, a.quit()

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.NotebooksLoaded:
		if msg.Err == nil {
			a.menuView.SetActiveNotebook(activeName(msg))
		}
		a.notebooksView, cmd = a.notebooksView.Update(msg)
		return a, cmd

	case messages.NotebookCreated, messages.NotebookDeleted:
		a.notebooksView, cmd = a.notebooksView.Update(msg)
		return a, cmd

	case messages.NotebookSelected:
		return a, a.openNotebook(msg.ID)

	case messages.NotebookClosed:
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.Clear()
		}
		a.currentView = messages.ViewNotebooks
		a.statusBar.SetBindings(a.keymap.NotebooksHelp())
		return a, a.notebooksView.Init()

	case messages.PersistFailed:
		a.setError(fmt.Errorf("autosave failed: %w", msg.Err))
		a.editorView, cmd = a.editorView.Update(msg)
		return a, cmd

	case messages.CellExecuted, messages.AllCellsExecuted, messages.NotebookExported:
		a.editorView, cmd = a.editorView.Update(msg)
		a.syncEditorStatus()
		return a, cmd

	case messages.NotebookSaved:
		a.editorView, cmd = a.editorView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.SetState(status.StateSaved)
		}
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	if k == "ctrl+c" {
		return a, a.quit()
	}
	if keymap.Matches(k, a.keymap.Help) && !a.capturingText() && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
		a.currentView = messages.ViewHelp
		a.statusBar.SetState(status.StateHelp)
		return a, nil
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewNotebooks:
		a.notebooksView, cmd = a.notebooksView.Update(msg)
	case messages.ViewEditor:
		a.editorView, cmd = a.editorView.Update(msg)
		if a.editorView.Running() {
			return a, tea.Batch(cmd, a.statusBar.StartRunning(a.editorView.NotebookName()))
		}
		a.syncEditorStatus()
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || keymap.Matches(k, a.keymap.Quit) {
			a.currentView = a.previousView
			a.statusBar.Clear()
		}
	}
	return a, cmd
}

// capturingText reports whether the active view is collecting typed input.
func (a *App) capturingText() bool {
	switch a.currentView {
	case messages.ViewNotebooks:
		return a.notebooksView.Prompting()
	case messages.ViewEditor:
		return a.editorView.Editing()
	case messages.ViewSettings:
		return a.settingsView.Editing()
	default:
		return false
	}
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.err = nil
	a.statusBar.Clear()
	a.statusBar.SetBindings(nil)

	switch view {
	case messages.ViewNotebooks:
		a.currentView = view
		a.statusBar.SetBindings(a.keymap.NotebooksHelp())
		return a.notebooksView.Init()
	case messages.ViewEditor:
		if a.editorView.IsOpen() {
			a.currentView = view
			return nil
		}
		nb, ok := a.ports.Workspace.Active()
		if !ok {
			a.currentView = messages.ViewNotebooks
			return a.notebooksView.Init()
		}
		return a.openNotebook(nb.ID)
	case messages.ViewSettings:
		a.currentView = view
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp:
		a.currentView = view
	}
	return nil
}

func (a *App) openNotebook(id string) tea.Cmd {
	var closing tea.Cmd
	if a.editorView.IsOpen() {
		closing = a.editorView.Close()
	}

	ed, err := a.ports.Workspace.Open(id)
	if err != nil {
		a.setError(err)
		return closing
	}

	listen := a.editorView.Open(ed)
	a.currentView = messages.ViewEditor
	a.menuView.SetActiveNotebook(a.editorView.NotebookName())
	a.statusBar.Clear()
	a.statusBar.SetMessage(a.editorView.NotebookName())
	a.statusBar.SetBindings(a.keymap.EditorHelp())
	return tea.Batch(closing, listen)
}

// quit flushes an open editor before exiting.
func (a *App) quit() tea.Cmd {
	if a.editorView.IsOpen() {
		return tea.Sequence(a.editorView.Close(), tea.Quit)
	}
	return tea.Quit
}

func (a *App) syncEditorStatus() {
	if a.statusBar.State() == status.StateError || !a.editorView.IsOpen() {
		return
	}
	if a.editorView.Running() {
		return
	}
	a.statusBar.SetMessage(a.editorView.NotebookName())
	if a.editorView.State() == driving.EditorDirty {
		a.statusBar.SetState(status.StateDirty)
	} else {
		a.statusBar.SetState(status.StateReady)
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

func activeName(msg messages.NotebooksLoaded) string {
	for _, nb := range msg.Notebooks {
		if nb.ID == msg.ActiveID {
			return nb.Name
		}
	}
	return ""
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewNotebooks:
		body = a.notebooksView.View()
	case messages.ViewEditor:
		body = a.editorView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}

	gap := a.height - lipgloss.Height(body) - 1
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + a.statusBar.View()
}

func (a *App) viewHelp() string {
	title := a.styles.Title.Render("Help")
	var rows []string
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			rows = append(rows, fmt.Sprintf("  %-10s %s", h.Key, h.Desc))
		}
		rows = append(rows, "")
	}
	rows = append(rows, a.styles.Help.Render("[esc] back"))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, rows...)...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	body := height - 1
	a.statusBar.SetWidth(width)
	a.menuView.SetDimensions(width, body)
	a.notebooksView.SetDimensions(width, body)
	a.editorView.SetDimensions(width, body)
	a.settingsView.SetDimensions(width, body)
}
