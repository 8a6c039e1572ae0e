package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure Editor implements the interface.
var _ driving.NotebookEditor = (*Editor)(nil)

// PersistFunc stores an edited notebook.
type PersistFunc func(ctx context.Context, nb domain.Notebook) error

// EditorOptions tunes autosave and bulk execution.
type EditorOptions struct {
	// Debounce is the quiet period after the last edit before autosaving.
	Debounce time.Duration

	// Parallelism bounds concurrent executions in ExecuteAll.
	Parallelism int
}

// Editor owns the in-memory copy of one open notebook. Every mutation marks
// the editor dirty and restarts the autosave timer; the notebook is
// persisted once edits have been quiet for the debounce period.
type Editor struct {
	engine  driving.ExecutionEngine
	storage driving.NotebookStorage
	persist PersistFunc
	opts    EditorOptions
	now     func() time.Time

	mu           sync.Mutex
	nb           domain.Notebook
	dirty        bool
	closed       bool
	timer        *time.Timer
	executing    map[string]bool
	onPersistErr func(error)

	// persistMu orders writes so an older snapshot never lands after a newer one.
	persistMu sync.Mutex
}

// NewEditor creates an editor over a copy of nb.
func NewEditor(
	nb domain.Notebook,
	engine driving.ExecutionEngine,
	storage driving.NotebookStorage,
	persist PersistFunc,
	opts EditorOptions,
) *Editor {
	if opts.Debounce <= 0 {
		opts.Debounce = domain.DefaultDebounce
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Editor{
		engine:    engine,
		storage:   storage,
		persist:   persist,
		opts:      opts,
		now:       time.Now,
		nb:        nb.Clone(),
		executing: make(map[string]bool),
	}
}

// markDirty records a mutation and restarts the autosave timer.
// Caller must hold e.mu.
func (e *Editor) markDirty() {
	e.dirty = true
	e.nb.UpdatedAt = e.now()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.closed {
		return
	}
	e.timer = time.AfterFunc(e.opts.Debounce, e.autosave)
}

func (e *Editor) autosave() {
	if err := e.flush(context.Background(), false); err != nil {
		e.mu.Lock()
		cb, id := e.onPersistErr, e.nb.ID
		e.mu.Unlock()

		logger.Warn("autosave of notebook %s failed: %v", id, err)
		if cb != nil {
			cb(err)
		}
	}
}

// flush persists a snapshot. Unless force is set, a clean editor is left alone.
func (e *Editor) flush(ctx context.Context, force bool) error {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	if !e.dirty && !force {
		e.mu.Unlock()
		return nil
	}
	snapshot := e.nb.Clone()
	e.dirty = false
	e.mu.Unlock()

	if e.persist == nil {
		return nil
	}
	if err := e.persist(ctx, snapshot); err != nil {
		e.mu.Lock()
		e.dirty = true
		e.mu.Unlock()
		return err
	}
	logger.Debug("notebook %s persisted", snapshot.ID)
	return nil
}

// UpdateCellContent replaces a cell's text.
func (e *Editor) UpdateCellContent(cellID, content string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.nb.Cell(cellID)
	if !ok {
		return false
	}
	cell.Content = content
	e.markDirty()
	return true
}

// AddCell inserts a template cell right after afterID. An empty or unknown
// anchor appends the cell at the end.
func (e *Editor) AddCell(cellType domain.CellType, afterID string) (domain.Cell, error) {
	if !cellType.IsValid() {
		return domain.Cell{}, fmt.Errorf("%w: cell type %q", domain.ErrInvalidInput, cellType)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cell := newCell(cellType, templateFor(cellType))
	idx := len(e.nb.Cells)
	if afterID != "" {
		if i := e.nb.CellIndex(afterID); i >= 0 {
			idx = i + 1
		}
	}
	e.nb.Cells = append(e.nb.Cells, domain.Cell{})
	copy(e.nb.Cells[idx+1:], e.nb.Cells[idx:])
	e.nb.Cells[idx] = cell

	e.markDirty()
	return cell.Clone(), nil
}

// DeleteCell removes a cell. A notebook always keeps at least one cell.
func (e *Editor) DeleteCell(cellID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.nb.Cells) <= 1 {
		return false
	}
	idx := e.nb.CellIndex(cellID)
	if idx < 0 {
		return false
	}
	e.nb.Cells = append(e.nb.Cells[:idx], e.nb.Cells[idx+1:]...)
	e.markDirty()
	return true
}

// MoveCellUp swaps a cell with its predecessor.
func (e *Editor) MoveCellUp(cellID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.nb.CellIndex(cellID)
	if idx <= 0 {
		return false
	}
	e.nb.Cells[idx-1], e.nb.Cells[idx] = e.nb.Cells[idx], e.nb.Cells[idx-1]
	e.markDirty()
	return true
}

// MoveCellDown swaps a cell with its successor.
func (e *Editor) MoveCellDown(cellID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.nb.CellIndex(cellID)
	if idx < 0 || idx >= len(e.nb.Cells)-1 {
		return false
	}
	e.nb.Cells[idx], e.nb.Cells[idx+1] = e.nb.Cells[idx+1], e.nb.Cells[idx]
	e.markDirty()
	return true
}

// Rename changes the notebook name. Blank names are refused.
func (e *Editor) Rename(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nb.Name = name
	e.markDirty()
	return true
}

// SetCollapsed sets a cell's collapsed flag.
func (e *Editor) SetCollapsed(cellID string, collapsed bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.nb.Cell(cellID)
	if !ok {
		return false
	}
	cell.Metadata.Collapsed = &collapsed
	e.markDirty()
	return true
}

// ExecuteCell runs a code cell and attaches the result. The lock is not held
// while the engine runs, so edits to other cells proceed meanwhile. Returns
// false for unknown or markdown cells, for a cell that is already running,
// and for a cell deleted while it ran.
func (e *Editor) ExecuteCell(ctx context.Context, cellID string) (domain.Cell, bool) {
	e.mu.Lock()
	cell, ok := e.nb.Cell(cellID)
	if !ok || !cell.IsCode() || e.executing[cellID] {
		e.mu.Unlock()
		return domain.Cell{}, false
	}
	source := cell.Content
	e.executing[cellID] = true
	e.mu.Unlock()

	start := time.Now()
	result := e.run(ctx, source)
	elapsed := time.Since(start).Milliseconds()

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.executing, cellID)

	cell, ok = e.nb.Cell(cellID)
	if !ok {
		return domain.Cell{}, false
	}
	cell.Output = result.AsOutput(elapsed)
	count := cell.ExecutionCountValue() + 1
	cell.Metadata.ExecutionCount = &count
	e.markDirty()
	return cell.Clone(), true
}

// run calls the engine, turning a panic into an execution error.
func (e *Editor) run(ctx context.Context, source string) (result domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ExecutionResult{Error: fmt.Sprint(r)}
		}
	}()
	if e.engine == nil {
		return domain.ExecutionResult{Error: "no execution engine configured"}
	}
	return e.engine.Execute(ctx, source)
}

// ExecuteAll runs every code cell with bounded parallelism and returns the
// number of cells that ran. Each cell's output is captured independently.
func (e *Editor) ExecuteAll(ctx context.Context) int {
	e.mu.Lock()
	ids := make([]string, 0, len(e.nb.Cells))
	for i := range e.nb.Cells {
		if e.nb.Cells[i].IsCode() {
			ids = append(ids, e.nb.Cells[i].ID)
		}
	}
	e.mu.Unlock()

	var ran atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallelism)
	for _, id := range ids {
		g.Go(func() error {
			if _, ok := e.ExecuteCell(gctx, id); ok {
				ran.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(ran.Load())
}

// Save persists immediately and cancels any pending autosave.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if err := e.flush(ctx, true); err != nil {
		return fmt.Errorf("save notebook: %w", err)
	}
	return nil
}

// ExportCurrent serialises the notebook as it is now.
func (e *Editor) ExportCurrent(format domain.ExportFormat) (string, error) {
	if e.storage == nil {
		return "", fmt.Errorf("export %s: no storage configured", format)
	}
	return e.storage.ExportNotebook(e.Snapshot(), format)
}

// Snapshot returns a deep copy of the notebook.
func (e *Editor) Snapshot() domain.Notebook {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nb.Clone()
}

// State reports whether edits are waiting to be persisted.
func (e *Editor) State() driving.EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dirty {
		return driving.EditorDirty
	}
	return driving.EditorClean
}

// IsExecuting reports whether the cell is running.
func (e *Editor) IsExecuting(cellID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executing[cellID]
}

// OnPersistError registers a callback for failed autosaves.
func (e *Editor) OnPersistError(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPersistErr = fn
}

// Close stops the autosave timer and flushes pending edits. Later edits
// are kept in memory but no longer autosaved.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	if err := e.flush(ctx, false); err != nil {
		return fmt.Errorf("flush notebook: %w", err)
	}
	return nil
}
