// Package editor provides the notebook editing view for the TUI.
//
// The view renders every cell of the open notebook. Markdown cells are
// rendered with glamour, code cells show their source followed by the
// output of their latest run. Enter or e edits the selected cell in a
// textarea; esc commits the edit. Structural edits and runs go through a
// driving.NotebookEditor, which owns autosave.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

type rendered struct {
	content string
	width   int
	out     string
}

// View edits one open notebook.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	storage driving.NotebookStorage

	editor   driving.NotebookEditor
	notebook domain.Notebook
	cursor   int
	offset   int

	editing  bool
	textarea textarea.Model

	renderer *glamour.TermRenderer
	markdown map[string]rendered

	persistErrs chan error
	done        chan struct{}

	status  string
	err     error
	running int

	width  int
	height int
	ready  bool
}

// NewView creates an editor view. Storage is used to write exports and may
// be nil, which disables export.
func NewView(s *styles.Styles, storage driving.NotebookStorage) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetWidth(76)
	ta.SetHeight(10)

	return &View{
		styles:   s,
		keymap:   keymap.DefaultKeyMap(),
		storage:  storage,
		textarea: ta,
		markdown: make(map[string]rendered),
		width:    80,
		height:   24,
	}
}

// Init initialises the editor view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Open binds the view to an editor and starts listening for autosave errors.
func (v *View) Open(ed driving.NotebookEditor) tea.Cmd {
	v.editor = ed
	v.notebook = ed.Snapshot()
	v.cursor = 0
	v.offset = 0
	v.editing = false
	v.status = ""
	v.err = nil
	v.markdown = make(map[string]rendered)

	errs := make(chan error, 1)
	done := make(chan struct{})
	v.persistErrs = errs
	v.done = done
	ed.OnPersistError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})
	return waitForPersistError(errs, done)
}

func waitForPersistError(errs <-chan error, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-errs:
			return messages.PersistFailed{Err: err}
		case <-done:
			return nil
		}
	}
}

// Close flushes pending edits and releases the editor.
func (v *View) Close() tea.Cmd {
	ed := v.editor
	if ed == nil {
		return nil
	}
	if v.editing {
		v.commitEdit()
	}
	id := v.notebook.ID
	v.editor = nil
	if v.done != nil {
		close(v.done)
		v.done = nil
	}
	return func() tea.Msg {
		return messages.NotebookClosed{ID: id, Err: ed.Close(context.Background())}
	}
}

// IsOpen reports whether a notebook is bound to the view.
func (v *View) IsOpen() bool {
	return v.editor != nil
}

// NotebookName returns the name of the open notebook.
func (v *View) NotebookName() string {
	return v.notebook.Name
}

// State reports the autosave state of the open notebook.
func (v *View) State() driving.EditorState {
	if v.editor == nil {
		return driving.EditorClean
	}
	return v.editor.State()
}

// Editing reports whether a cell is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Update handles messages for the editor view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CellExecuted:
		v.finishRun()
		v.sync()
		switch {
		case !msg.OK:
			v.status = "cell did not run"
		case msg.Cell.Output != nil && msg.Cell.Output.Type == domain.OutputTypeError:
			v.status = fmt.Sprintf("cell %d failed", v.notebook.CellIndex(msg.Cell.ID)+1)
		default:
			v.status = fmt.Sprintf("ran cell %d", v.notebook.CellIndex(msg.Cell.ID)+1)
		}
		return v, nil

	case messages.AllCellsExecuted:
		v.finishRun()
		v.sync()
		v.status = fmt.Sprintf("ran %d cells", msg.Count)
		return v, nil

	case messages.NotebookSaved:
		v.sync()
		v.err = msg.Err
		if msg.Err == nil {
			v.status = "saved"
		}
		return v, nil

	case messages.NotebookExported:
		v.err = msg.Err
		if msg.Err == nil {
			v.status = "exported to " + msg.Path
		}
		return v, nil

	case messages.PersistFailed:
		v.err = msg.Err
		if v.persistErrs != nil && v.done != nil {
			return v, waitForPersistError(v.persistErrs, v.done)
		}
		return v, nil

	case tea.KeyMsg:
		if v.editor == nil {
			if msg.String() == "esc" {
				return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewNotebooks} }
			}
			return v, nil
		}
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.commitEdit()
		return v, nil
	case "ctrl+r":
		v.commitEdit()
		return v, v.runSelected()
	case "ctrl+s":
		v.commitEdit()
		return v, v.save()
	}

	var cmd tea.Cmd
	v.textarea, cmd = v.textarea.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	km := v.keymap
	cell, hasCell := v.selected()

	switch {
	case keymap.Matches(k, km.Back):
		return v, v.Close()

	case keymap.Matches(k, km.Up):
		if v.cursor > 0 {
			v.cursor--
		}

	case keymap.Matches(k, km.Down):
		if v.cursor < len(v.notebook.Cells)-1 {
			v.cursor++
		}

	case keymap.Matches(k, km.Edit):
		if hasCell {
			return v, v.startEdit(cell)
		}

	case keymap.Matches(k, km.Run):
		return v, v.runSelected()

	case keymap.Matches(k, km.RunAll):
		return v, v.runAll()

	case keymap.Matches(k, km.AddCode):
		return v, v.addCell(domain.CellTypeCode)

	case keymap.Matches(k, km.AddMarkdown):
		return v, v.addCell(domain.CellTypeMarkdown)

	case keymap.Matches(k, km.Delete):
		if hasCell && !v.editor.DeleteCell(cell.ID) {
			v.status = "a notebook keeps at least one cell"
		}
		v.sync()

	case keymap.Matches(k, km.MoveUp):
		if hasCell && v.editor.MoveCellUp(cell.ID) {
			v.cursor--
		}
		v.sync()

	case keymap.Matches(k, km.MoveDown):
		if hasCell && v.editor.MoveCellDown(cell.ID) {
			v.cursor++
		}
		v.sync()

	case keymap.Matches(k, km.Collapse):
		if hasCell && cell.IsCode() {
			v.editor.SetCollapsed(cell.ID, !cell.IsCollapsed())
			v.sync()
		}

	case keymap.Matches(k, km.Save):
		return v, v.save()

	case keymap.Matches(k, km.Export):
		return v, v.export(domain.ExportMarkdown)
	}

	return v, nil
}

func (v *View) selected() (domain.Cell, bool) {
	if v.cursor < 0 || v.cursor >= len(v.notebook.Cells) {
		return domain.Cell{}, false
	}
	return v.notebook.Cells[v.cursor], true
}

// sync refreshes the local snapshot and clamps the cursor.
func (v *View) sync() {
	if v.editor == nil {
		return
	}
	v.notebook = v.editor.Snapshot()
	if v.cursor >= len(v.notebook.Cells) {
		v.cursor = len(v.notebook.Cells) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *View) startEdit(cell domain.Cell) tea.Cmd {
	v.editing = true
	v.textarea.SetValue(cell.Content)
	return v.textarea.Focus()
}

func (v *View) commitEdit() {
	v.editing = false
	v.textarea.Blur()
	cell, ok := v.selected()
	if !ok || v.editor == nil {
		return
	}
	if content := v.textarea.Value(); content != cell.Content {
		v.editor.UpdateCellContent(cell.ID, content)
	}
	v.sync()
}

func (v *View) addCell(cellType domain.CellType) tea.Cmd {
	after := ""
	if cell, ok := v.selected(); ok {
		after = cell.ID
	}
	added, err := v.editor.AddCell(cellType, after)
	if err != nil {
		v.err = err
		return nil
	}
	v.sync()
	v.cursor = v.notebook.CellIndex(added.ID)
	return v.startEdit(added)
}

func (v *View) runSelected() tea.Cmd {
	cell, ok := v.selected()
	if !ok || !cell.IsCode() {
		return nil
	}
	ed := v.editor
	id := cell.ID
	v.status = "running"
	v.running++
	return func() tea.Msg {
		out, ok := ed.ExecuteCell(context.Background(), id)
		return messages.CellExecuted{Cell: out, OK: ok}
	}
}

func (v *View) runAll() tea.Cmd {
	ed := v.editor
	v.status = "running all cells"
	v.running++
	return func() tea.Msg {
		return messages.AllCellsExecuted{Count: ed.ExecuteAll(context.Background())}
	}
}

func (v *View) finishRun() {
	if v.running > 0 {
		v.running--
	}
}

// Running reports whether a run started from this view has not finished.
func (v *View) Running() bool {
	return v.running > 0
}

func (v *View) save() tea.Cmd {
	ed := v.editor
	return func() tea.Msg {
		return messages.NotebookSaved{Err: ed.Save(context.Background())}
	}
}

func (v *View) export(format domain.ExportFormat) tea.Cmd {
	if v.storage == nil {
		v.err = fmt.Errorf("export is not available")
		return nil
	}
	ed, storage := v.editor, v.storage
	name := v.notebook.Name
	return func() tea.Msg {
		content, err := ed.ExportCurrent(format)
		if err != nil {
			return messages.NotebookExported{Err: err}
		}
		path, err := storage.DownloadFile(context.Background(), content, storage.ExportFilename(name, format), format.MIMEType())
		return messages.NotebookExported{Path: path, Err: err}
	}
}

// View renders the notebook.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}
	if v.editor == nil {
		return v.styles.Muted.Render("No notebook open. Press esc to pick one.")
	}

	header := v.styles.Title.Render(v.notebook.Name)
	if v.editor.State() == driving.EditorDirty {
		header += v.styles.Muted.Render("  (unsaved)")
	}

	footer := v.footer()
	budget := v.height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	body := v.renderCells(budget)

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
}

func (v *View) footer() string {
	var lines []string
	if v.err != nil {
		lines = append(lines, v.styles.Error.Render("Error: "+v.err.Error()))
	} else if v.status != "" {
		lines = append(lines, v.styles.Muted.Render(v.status))
	}
	if v.editing {
		lines = append(lines, v.styles.Help.Render("[Esc] Done  [Ctrl+R] Done and run  [Ctrl+S] Save"))
	} else {
		lines = append(lines, v.styles.Help.Render("[e] Edit  [r] Run  [R] Run all  [a/m] Add  [d] Delete  [K/J] Move  [c] Collapse  [s] Save  [x] Export  [Esc] Close"))
	}
	return strings.Join(lines, "\n")
}

// renderCells renders cells from the scroll offset, keeping the cursor
// visible within the line budget.
func (v *View) renderCells(budget int) string {
	if v.cursor < v.offset {
		v.offset = v.cursor
	}

	blocks := make([]string, len(v.notebook.Cells))
	for i := range v.notebook.Cells {
		blocks[i] = v.renderCell(i)
	}

	for {
		used := 0
		last := v.offset
		for i := v.offset; i < len(blocks); i++ {
			h := lipgloss.Height(blocks[i])
			if used+h > budget && i > v.offset {
				break
			}
			used += h
			last = i
		}
		if last >= v.cursor || v.offset >= v.cursor {
			return strings.Join(blocks[v.offset:last+1], "\n")
		}
		v.offset++
	}
}

func (v *View) renderCell(i int) string {
	cell := v.notebook.Cells[i]
	frame := v.styles.Cell
	if i == v.cursor {
		frame = v.styles.CellSelected
	}
	width := v.width - 4
	if width < 20 {
		width = 20
	}
	frame = frame.Width(width)

	if v.editing && i == v.cursor {
		return frame.Render(v.gutter(cell) + "\n" + v.textarea.View())
	}

	var body string
	if cell.IsCode() {
		body = v.gutter(cell) + "\n" + cell.Content
		if out := v.renderOutput(cell); out != "" {
			body += "\n" + out
		}
	} else {
		body = v.renderMarkdown(cell, width-2)
	}
	return frame.Render(body)
}

func (v *View) gutter(cell domain.Cell) string {
	if !cell.IsCode() {
		return v.styles.Muted.Render("markdown")
	}
	count := " "
	switch {
	case v.editor != nil && v.editor.IsExecuting(cell.ID):
		count = "*"
	case cell.ExecutionCountValue() > 0:
		count = fmt.Sprint(cell.ExecutionCountValue())
	}
	return v.styles.Prompt.Render(fmt.Sprintf("In [%s]:", count))
}

func (v *View) renderOutput(cell domain.Cell) string {
	if cell.Output == nil {
		return ""
	}
	if cell.IsCollapsed() {
		return v.styles.Muted.Render("  … output collapsed")
	}
	text := cell.Output.Content
	if cell.Output.ExecutionTime != nil {
		text += v.styles.Muted.Render(fmt.Sprintf("\n(%d ms)", *cell.Output.ExecutionTime))
	}
	if cell.Output.Type == domain.OutputTypeError {
		return v.styles.OutputError.Render(text)
	}
	return v.styles.Output.Render(text)
}

func (v *View) renderMarkdown(cell domain.Cell, width int) string {
	if cached, ok := v.markdown[cell.ID]; ok && cached.content == cell.Content && cached.width == width {
		return cached.out
	}

	out := cell.Content
	if r := v.markdownRenderer(width); r != nil {
		if md, err := r.Render(cell.Content); err == nil {
			out = strings.Trim(md, "\n")
		}
	}
	v.markdown[cell.ID] = rendered{content: cell.Content, width: width, out: out}
	return out
}

func (v *View) markdownRenderer(width int) *glamour.TermRenderer {
	if v.renderer != nil {
		return v.renderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	v.renderer = r
	return r
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	if width != v.width {
		v.renderer = nil
	}
	v.width = width
	v.height = height
	v.ready = true
	v.textarea.SetWidth(max(width-8, 20))
	v.textarea.SetHeight(max(height/3, 5))
}
