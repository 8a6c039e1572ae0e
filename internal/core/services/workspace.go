package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure Workspace implements the interface.
var _ driving.WorkspaceService = (*Workspace)(nil)

// Workspace holds the notebook collection in memory and writes it through
// the storage service on every collection-level change.
type Workspace struct {
	storage driving.NotebookStorage
	engine  driving.ExecutionEngine
	opts    EditorOptions

	// saveMu orders collection writes so the last change is stored last.
	saveMu sync.Mutex
	mu     sync.RWMutex
	state  domain.NotebookState
}

// NewWorkspace creates a workspace. Call Load before use.
func NewWorkspace(storage driving.NotebookStorage, engine driving.ExecutionEngine, opts EditorOptions) *Workspace {
	return &Workspace{
		storage: storage,
		engine:  engine,
		opts:    opts,
		state:   domain.EmptyState(),
	}
}

// Load reads the collection from storage.
func (w *Workspace) Load(ctx context.Context) error {
	if w.storage == nil {
		return fmt.Errorf("load notebooks: storage not configured")
	}
	state := w.storage.Load(ctx)
	if _, ok := state.Notebooks[state.ActiveNotebookID]; !ok && state.ActiveNotebookID != "" {
		logger.Warn("active notebook %s not found, clearing selection", state.ActiveNotebookID)
		state.ActiveNotebookID = ""
	}

	w.mu.Lock()
	w.state = state
	w.mu.Unlock()

	logger.Debug("loaded %d notebooks", len(state.Notebooks))
	return nil
}

// List returns every notebook, most recently updated first.
func (w *Workspace) List() []domain.Notebook {
	w.mu.RLock()
	defer w.mu.RUnlock()

	list := make([]domain.Notebook, 0, len(w.state.Notebooks))
	for _, nb := range w.state.Notebooks {
		list = append(list, nb.Clone())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Get returns a notebook by ID.
func (w *Workspace) Get(id string) (domain.Notebook, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	nb, ok := w.state.Notebooks[id]
	if !ok {
		return domain.Notebook{}, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	return nb.Clone(), nil
}

// Active returns the active notebook.
func (w *Workspace) Active() (domain.Notebook, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	nb, ok := w.state.Notebooks[w.state.ActiveNotebookID]
	if !ok {
		return domain.Notebook{}, false
	}
	return nb.Clone(), true
}

// Create adds a seeded notebook, selects it and saves the collection.
// The notebook stays in memory when the save fails.
func (w *Workspace) Create(ctx context.Context, name string) (domain.Notebook, error) {
	nb := w.storage.CreateNotebook(name)
	if err := w.add(ctx, nb); err != nil {
		return nb, err
	}
	logger.Info("created notebook %s (%s)", nb.ID, nb.Name)
	return nb, nil
}

// Import adds a notebook parsed from an export and selects it.
func (w *Workspace) Import(ctx context.Context, data []byte, format domain.ExportFormat) (domain.Notebook, error) {
	nb, err := w.storage.ImportNotebook(data, format)
	if err != nil {
		return domain.Notebook{}, fmt.Errorf("import notebook: %w", err)
	}
	if err := w.add(ctx, nb); err != nil {
		return nb, err
	}
	logger.Info("imported notebook %s (%s)", nb.ID, nb.Name)
	return nb, nil
}

func (w *Workspace) add(ctx context.Context, nb domain.Notebook) error {
	return w.commit(ctx, func() error {
		w.state.Notebooks[nb.ID] = nb.Clone()
		w.state.ActiveNotebookID = nb.ID
		return nil
	})
}

// Select makes a notebook active. The pointer write is best effort.
func (w *Workspace) Select(ctx context.Context, id string) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	if _, ok := w.state.Notebooks[id]; !ok {
		w.mu.Unlock()
		return fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	w.state.ActiveNotebookID = id
	w.mu.Unlock()

	w.storage.SetActiveNotebook(ctx, id)
	return nil
}

// Delete removes a notebook. When it was active, the remaining notebook with
// the smallest ID becomes active. IDs are time ordered, so that is the
// oldest one. With nothing left the selection is cleared.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	err := w.commit(ctx, func() error {
		if _, ok := w.state.Notebooks[id]; !ok {
			return fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
		}
		delete(w.state.Notebooks, id)
		if w.state.ActiveNotebookID == id {
			w.state.ActiveNotebookID = firstID(w.state.Notebooks)
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	logger.Info("deleted notebook %s", id)
	return err
}

func firstID(notebooks map[string]domain.Notebook) string {
	first := ""
	for id := range notebooks {
		if first == "" || id < first {
			first = id
		}
	}
	return first
}

// SaveNotebook stores an updated notebook and persists the collection.
// A notebook that is not in the collection, for example one deleted while
// an editor still had it open, is refused with domain.ErrNotFound.
func (w *Workspace) SaveNotebook(ctx context.Context, nb domain.Notebook) error {
	return w.commit(ctx, func() error {
		if _, ok := w.state.Notebooks[nb.ID]; !ok {
			return fmt.Errorf("notebook %s: %w", nb.ID, domain.ErrNotFound)
		}
		w.state.Notebooks[nb.ID] = nb.Clone()
		return nil
	})
}

// Open returns an editor bound to a notebook. The editor autosaves through
// SaveNotebook.
func (w *Workspace) Open(id string) (driving.NotebookEditor, error) {
	nb, err := w.Get(id)
	if err != nil {
		return nil, err
	}
	return NewEditor(nb, w.engine, w.storage, w.SaveNotebook, w.opts), nil
}

// commit applies change to the in-memory state and persists the result.
// Commits are serialised, so snapshots reach storage in the order they were
// taken.
func (w *Workspace) commit(ctx context.Context, change func() error) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	if err := change(); err != nil {
		w.mu.Unlock()
		return err
	}
	snapshot := w.snapshotLocked()
	w.mu.Unlock()

	return w.save(ctx, snapshot)
}

// snapshotLocked copies the state map. Caller must hold w.mu.
func (w *Workspace) snapshotLocked() domain.NotebookState {
	notebooks := make(map[string]domain.Notebook, len(w.state.Notebooks))
	for id, nb := range w.state.Notebooks {
		notebooks[id] = nb
	}
	return domain.NotebookState{Notebooks: notebooks, ActiveNotebookID: w.state.ActiveNotebookID}
}

func (w *Workspace) save(ctx context.Context, state domain.NotebookState) error {
	if err := w.storage.Save(ctx, state); err != nil {
		return fmt.Errorf("save notebooks: %w", err)
	}
	return nil
}
