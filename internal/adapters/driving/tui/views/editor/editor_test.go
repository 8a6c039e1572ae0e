package editor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/core/services"
)

type echoRuntime struct{}

func (echoRuntime) Run(_ context.Context, source string, stdout io.Writer) (driven.RunResult, error) {
	if strings.Contains(source, "boom") {
		return driven.RunResult{}, errors.New("undefined: boom")
	}
	_, err := io.WriteString(stdout, "echo ok")
	return driven.RunResult{}, err
}

type fixture struct {
	view   *View
	editor driving.NotebookEditor
	dir    string
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	storage := services.NewNotebookStorage(memory.NewKVStore("test", 0, 0), nil, file.NewDownloadSink(dir))
	engine := services.NewExecutionEngine(echoRuntime{}, domain.ExecutionSettings{})
	ws := services.NewWorkspace(storage, engine, services.EditorOptions{})
	require.NoError(t, ws.Load(context.Background()))

	nb, err := ws.Create(context.Background(), "Tidepool")
	require.NoError(t, err)
	ed, err := ws.Open(nb.ID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close(context.Background()) })

	v := NewView(nil, storage)
	v.SetDimensions(120, 400)
	require.NotNil(t, v.Open(ed))
	return &fixture{view: v, editor: ed, dir: dir}
}

func (f *fixture) press(t *testing.T, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		f.view, cmd = f.view.Update(k)
	}
	return cmd
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil)

	assert.Equal(t, "Initialising...", v.View())
	assert.Nil(t, v.Init())
}

func TestView_NoNotebookOpen(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 24)

	assert.False(t, v.IsOpen())
	assert.Contains(t, v.View(), "No notebook open")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewNotebooks}, cmd())
}

func TestView_RendersNotebook(t *testing.T) {
	f := newFixture(t)

	view := f.view.View()
	assert.Contains(t, view, "Tidepool")
	assert.Contains(t, view, "In [ ]:")
	assert.Equal(t, "Tidepool", f.view.NotebookName())
}

func TestView_Navigation(t *testing.T) {
	f := newFixture(t)

	f.press(t, runes("k"))
	assert.Equal(t, 0, f.view.cursor)

	f.press(t, runes("j"), runes("j"))
	assert.Equal(t, 2, f.view.cursor)

	f.press(t, runes("j"), runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 4, f.view.cursor)
}

func TestView_EditCommitsOnEsc(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"))

	f.press(t, runes("e"))
	require.True(t, f.view.Editing())

	f.view.textarea.SetValue("fmt.Println(42)")
	f.press(t, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, f.view.Editing())
	snap := f.editor.Snapshot()
	assert.Equal(t, "fmt.Println(42)", snap.Cells[1].Content)
	assert.Equal(t, driving.EditorDirty, f.editor.State())
}

func TestView_RunCodeCell(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"))

	cmd := f.press(t, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, f.view.Running())
	msg, ok := cmd().(messages.CellExecuted)
	require.True(t, ok)
	require.True(t, msg.OK)

	f.view, _ = f.view.Update(msg)
	assert.False(t, f.view.Running())

	view := f.view.View()
	assert.Contains(t, view, "In [1]:")
	assert.Contains(t, view, "echo ok")
	assert.Contains(t, view, "ran cell 2")
}

func TestView_RunFailingCell(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"), runes("e"))
	f.view.textarea.SetValue("boom()")

	cmd := f.press(t, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	f.view, _ = f.view.Update(cmd())

	view := f.view.View()
	assert.Contains(t, view, "undefined: boom")
	assert.Contains(t, view, "cell 2 failed")
}

func TestView_RunMarkdownCellIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.press(t, runes("r")))
	assert.False(t, f.view.Running())
}

func TestView_RunAll(t *testing.T) {
	f := newFixture(t)

	cmd := f.press(t, runes("R"))
	require.NotNil(t, cmd)
	assert.True(t, f.view.Running())
	msg, ok := cmd().(messages.AllCellsExecuted)
	require.True(t, ok)
	assert.Equal(t, 3, msg.Count)

	f.view, _ = f.view.Update(msg)
	assert.Contains(t, f.view.View(), "ran 3 cells")
}

func TestView_AddCellStartsEditing(t *testing.T) {
	f := newFixture(t)

	cmd := f.press(t, runes("a"))
	assert.NotNil(t, cmd)

	snap := f.editor.Snapshot()
	require.Len(t, snap.Cells, 6)
	assert.Equal(t, domain.CellTypeCode, snap.Cells[1].Type)
	assert.Equal(t, 1, f.view.cursor)
	assert.True(t, f.view.Editing())

	f.press(t, tea.KeyMsg{Type: tea.KeyEsc}, runes("m"))
	snap = f.editor.Snapshot()
	require.Len(t, snap.Cells, 7)
	assert.Equal(t, domain.CellTypeMarkdown, snap.Cells[2].Type)
}

func TestView_DeleteCell(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"), runes("j"), runes("j"), runes("j"))

	for range 4 {
		f.press(t, runes("d"))
	}
	require.Len(t, f.editor.Snapshot().Cells, 1)

	f.press(t, runes("d"))
	assert.Len(t, f.editor.Snapshot().Cells, 1)
	assert.Contains(t, f.view.View(), "at least one cell")
}

func TestView_MoveCell(t *testing.T) {
	f := newFixture(t)
	first := f.editor.Snapshot().Cells[0].ID

	f.press(t, runes("J"))
	assert.Equal(t, 1, f.view.cursor)
	assert.Equal(t, first, f.editor.Snapshot().Cells[1].ID)

	f.press(t, runes("K"))
	assert.Equal(t, 0, f.view.cursor)
	assert.Equal(t, first, f.editor.Snapshot().Cells[0].ID)

	f.press(t, runes("K"))
	assert.Equal(t, 0, f.view.cursor)
}

func TestView_CollapseOutput(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"))
	f.view, _ = f.view.Update(f.press(t, runes("r"))())

	f.press(t, runes("c"))

	assert.True(t, f.editor.Snapshot().Cells[1].IsCollapsed())
	assert.Contains(t, f.view.View(), "output collapsed")
	assert.NotContains(t, f.view.View(), "echo ok")
}

func TestView_Save(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"), runes("e"))
	f.view.textarea.SetValue("x := 1")
	f.press(t, tea.KeyMsg{Type: tea.KeyEsc})
	require.Contains(t, f.view.View(), "(unsaved)")

	cmd := f.press(t, runes("s"))
	require.NotNil(t, cmd)
	f.view, _ = f.view.Update(cmd())

	assert.Equal(t, driving.EditorClean, f.editor.State())
	assert.NotContains(t, f.view.View(), "(unsaved)")
}

func TestView_ExportMarkdown(t *testing.T) {
	f := newFixture(t)

	cmd := f.press(t, runes("x"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.NotebookExported)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, filepath.Join(f.dir, "tidepool.md"), msg.Path)

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tidepool")

	f.view, _ = f.view.Update(msg)
	assert.Contains(t, f.view.View(), "exported to")
}

func TestView_ExportWithoutStorage(t *testing.T) {
	f := newFixture(t)
	f.view.storage = nil

	assert.Nil(t, f.press(t, runes("x")))
	assert.Contains(t, f.view.View(), "export is not available")
}

func TestView_PersistFailureKeepsListening(t *testing.T) {
	f := newFixture(t)

	v, cmd := f.view.Update(messages.PersistFailed{Err: domain.ErrStorageExhausted})

	assert.NotNil(t, cmd)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_CloseFlushes(t *testing.T) {
	f := newFixture(t)
	f.press(t, runes("j"), runes("e"))
	f.view.textarea.SetValue("y := 2")

	cmd := f.press(t, tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	closed, ok := cmd().(messages.NotebookClosed)
	require.True(t, ok)
	require.NoError(t, closed.Err)

	assert.False(t, f.view.IsOpen())
	assert.Equal(t, driving.EditorClean, f.editor.State())
	assert.Equal(t, "y := 2", f.editor.Snapshot().Cells[1].Content)
}
