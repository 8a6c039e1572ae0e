package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

func newTestWorkspace(t *testing.T) (*Workspace, *memory.KVStore) {
	t.Helper()
	primary := memory.NewKVStore("primary", 0, 0)
	storage := NewNotebookStorage(primary, nil, nil)
	engine := NewExecutionEngine(&mockRuntime{}, domain.ExecutionSettings{})

	w := NewWorkspace(storage, engine, EditorOptions{Debounce: testDebounce})
	require.NoError(t, w.Load(context.Background()))
	return w, primary
}

// seedNotebook puts a notebook into the collection without persisting it.
func seedNotebook(w *Workspace, nb domain.Notebook) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Notebooks[nb.ID] = nb.Clone()
}

func TestWorkspace_CreateSelectsAndPersists(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	nb, err := w.Create(ctx, "Cruise 1")
	require.NoError(t, err)

	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, nb.ID, active.ID)

	v, ok, err := primary.Get(ctx, KeyActiveNotebook)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, nb.ID, v)

	// A fresh workspace over the same store sees the notebook.
	other := NewWorkspace(NewNotebookStorage(primary, nil, nil), nil, EditorOptions{})
	require.NoError(t, other.Load(ctx))
	got, err := other.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cruise 1", got.Name)
}

func TestWorkspace_Create_SaveFailureKeepsNotebook(t *testing.T) {
	storage := NewNotebookStorage(&failingStore{err: errStoreDown}, nil, nil)
	w := NewWorkspace(storage, nil, EditorOptions{})
	require.NoError(t, w.Load(context.Background()))

	nb, err := w.Create(context.Background(), "Unsaved")
	assert.ErrorIs(t, err, domain.ErrStorageExhausted)

	_, err = w.Get(nb.ID)
	assert.NoError(t, err)
}

func TestWorkspace_List_Order(t *testing.T) {
	w, _ := newTestWorkspace(t)
	ctx := context.Background()

	base := testNotebook()
	for i, id := range []string{"b", "a", "c"} {
		nb := base.Clone()
		nb.ID = id
		nb.UpdatedAt = fixedTime
		if id == "c" {
			nb.UpdatedAt = fixedTime.Add(time.Duration(i) * time.Hour)
		}
		seedNotebook(w, nb)
		require.NoError(t, w.SaveNotebook(ctx, nb))
	}

	var ids []string
	for _, nb := range w.List() {
		ids = append(ids, nb.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestWorkspace_Get_NotFound(t *testing.T) {
	w, _ := newTestWorkspace(t)

	_, err := w.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = w.Open("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWorkspace_Select(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	first, err := w.Create(ctx, "First")
	require.NoError(t, err)
	_, err = w.Create(ctx, "Second")
	require.NoError(t, err)

	require.NoError(t, w.Select(ctx, first.ID))
	active, _ := w.Active()
	assert.Equal(t, first.ID, active.ID)

	v, _, _ := primary.Get(ctx, KeyActiveNotebook)
	assert.Equal(t, first.ID, v)

	assert.ErrorIs(t, w.Select(ctx, "missing"), domain.ErrNotFound)
}

func TestWorkspace_Delete(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	a := testNotebook()
	a.ID = "a"
	b := testNotebook()
	b.ID = "b"
	seedNotebook(w, a)
	seedNotebook(w, b)
	require.NoError(t, w.SaveNotebook(ctx, a))
	require.NoError(t, w.Select(ctx, "b"))

	require.NoError(t, w.Delete(ctx, "b"))
	active, ok := w.Active()
	require.True(t, ok)
	assert.Equal(t, "a", active.ID, "the remaining notebook becomes active")

	require.NoError(t, w.Delete(ctx, "a"))
	_, ok = w.Active()
	assert.False(t, ok)
	assert.Empty(t, w.List())

	_, ok, _ = primary.Get(ctx, KeyActiveNotebook)
	assert.False(t, ok, "active pointer is cleared when nothing is left")

	assert.ErrorIs(t, w.Delete(ctx, "a"), domain.ErrNotFound)
}

func TestWorkspace_Load_DropsDanglingActive(t *testing.T) {
	primary := memory.NewKVStore("primary", 0, 0)
	ctx := context.Background()
	require.NoError(t, primary.Set(ctx, KeyNotebooks, "{}"))
	require.NoError(t, primary.Set(ctx, KeyActiveNotebook, "gone"))

	w := NewWorkspace(NewNotebookStorage(primary, nil, nil), nil, EditorOptions{})
	require.NoError(t, w.Load(ctx))

	_, ok := w.Active()
	assert.False(t, ok)
}

func TestWorkspace_Load_NoStorage(t *testing.T) {
	w := NewWorkspace(nil, nil, EditorOptions{})
	assert.Error(t, w.Load(context.Background()))
}

func TestWorkspace_Import(t *testing.T) {
	w, _ := newTestWorkspace(t)
	ctx := context.Background()

	data, err := NewNotebookStorage(nil, nil, nil).ExportNotebook(testNotebook(), domain.ExportIPYNB)
	require.NoError(t, err)

	nb, err := w.Import(ctx, []byte(data), domain.ExportIPYNB)
	require.NoError(t, err)
	assert.Equal(t, "Survey 2024", nb.Name)

	active, _ := w.Active()
	assert.Equal(t, nb.ID, active.ID)

	_, err = w.Import(ctx, []byte("{}"), domain.ExportJSON)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWorkspace_Open_AutosavesThroughWorkspace(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	nb, err := w.Create(ctx, "Editable")
	require.NoError(t, err)

	editor, err := w.Open(nb.ID)
	require.NoError(t, err)
	defer editor.Close(ctx)

	require.True(t, editor.Rename("Edited"))

	assert.Eventually(t, func() bool {
		got, err := w.Get(nb.ID)
		return err == nil && got.Name == "Edited"
	}, time.Second, 5*time.Millisecond)

	reloaded := NewNotebookStorage(primary, nil, nil).Load(ctx)
	assert.Equal(t, "Edited", reloaded.Notebooks[nb.ID].Name)
}

func TestWorkspace_SaveNotebook_RefusesUnknown(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	nb := testNotebook()
	nb.ID = "notebook-stray"
	assert.ErrorIs(t, w.SaveNotebook(ctx, nb), domain.ErrNotFound)
	assert.Empty(t, w.List())

	_, ok, err := primary.Get(ctx, KeyNotebooks)
	require.NoError(t, err)
	assert.False(t, ok, "nothing is written for a refused notebook")
}

func TestWorkspace_Delete_OpenEditorCannotResurrect(t *testing.T) {
	w, primary := newTestWorkspace(t)
	ctx := context.Background()

	nb, err := w.Create(ctx, "Short lived")
	require.NoError(t, err)
	editor, err := w.Open(nb.ID)
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, nb.ID))

	require.True(t, editor.Rename("Still editing"))
	err = editor.Save(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, driving.EditorDirty, editor.State())

	_, err = w.Get(nb.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	reloaded := NewNotebookStorage(primary, nil, nil).Load(ctx)
	assert.NotContains(t, reloaded.Notebooks, nb.ID)

	assert.ErrorIs(t, editor.Close(ctx), domain.ErrNotFound)
}
