package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Ensure NotebookStorage implements the interface.
var _ driving.NotebookStorage = (*NotebookStorage)(nil)

// Storage keys shared by the primary and fallback stores.
const (
	KeyNotebooks      = "marinebook.notebooks"
	KeyActiveNotebook = "marinebook.active_notebook"
)

// NotebookStorage persists the notebook collection to a primary store,
// falling back to a session store when the primary refuses a write.
type NotebookStorage struct {
	primary  driven.KeyValueStore
	fallback driven.KeyValueStore
	sink     driven.FileSink
	now      func() time.Time
}

// NewNotebookStorage creates a storage service. fallback and sink may be nil.
func NewNotebookStorage(primary, fallback driven.KeyValueStore, sink driven.FileSink) *NotebookStorage {
	return &NotebookStorage{
		primary:  primary,
		fallback: fallback,
		sink:     sink,
		now:      time.Now,
	}
}

// Save writes the collection and active pointer to the primary store. On
// any primary failure the same data goes to the fallback store. When both
// fail the returned error wraps domain.ErrStorageExhausted and both causes.
func (s *NotebookStorage) Save(ctx context.Context, state domain.NotebookState) error {
	notebooks := state.Notebooks
	if notebooks == nil {
		notebooks = map[string]domain.Notebook{}
	}
	data, err := json.Marshal(notebooks)
	if err != nil {
		return fmt.Errorf("encode notebooks: %w", err)
	}

	primaryErr := errors.New("no primary store")
	if s.primary != nil {
		primaryErr = writeState(ctx, s.primary, string(data), state.ActiveNotebookID, true)
		if primaryErr == nil {
			return nil
		}
		logger.Warn("failed to save notebooks to %s: %v", s.primary.Name(), primaryErr)
	}

	if s.fallback == nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageExhausted, primaryErr)
	}
	if err := writeState(ctx, s.fallback, string(data), state.ActiveNotebookID, false); err != nil {
		logger.Error("failed to save notebooks to %s as well: %v", s.fallback.Name(), err)
		return fmt.Errorf("%w: primary: %w; fallback: %w", domain.ErrStorageExhausted, primaryErr, err)
	}
	logger.Info("notebooks saved to fallback store %s", s.fallback.Name())
	return nil
}

// writeState stores both entries. An empty active ID removes the pointer
// only when clearActive is set; the fallback keeps whatever it had.
func writeState(ctx context.Context, store driven.KeyValueStore, notebooks, activeID string, clearActive bool) error {
	if err := store.Set(ctx, KeyNotebooks, notebooks); err != nil {
		return fmt.Errorf("write notebooks: %w", err)
	}
	if activeID != "" {
		if err := store.Set(ctx, KeyActiveNotebook, activeID); err != nil {
			return fmt.Errorf("write active notebook: %w", err)
		}
		return nil
	}
	if clearActive {
		if err := store.Delete(ctx, KeyActiveNotebook); err != nil {
			return fmt.Errorf("clear active notebook: %w", err)
		}
	}
	return nil
}

// Load reads each entry from the primary store, or from the fallback when
// the primary has none. Unreadable data yields an empty state.
func (s *NotebookStorage) Load(ctx context.Context) domain.NotebookState {
	state := domain.EmptyState()

	raw, ok := s.read(ctx, KeyNotebooks)
	if ok && raw != "" {
		var notebooks map[string]domain.Notebook
		if err := json.Unmarshal([]byte(raw), &notebooks); err != nil {
			logger.Warn("failed to load notebooks from storage: %v", err)
			return domain.EmptyState()
		}
		for id, nb := range notebooks {
			if nb.ID == "" {
				nb.ID = id
			}
			state.Notebooks[id] = nb
		}
	}

	if active, ok := s.read(ctx, KeyActiveNotebook); ok {
		state.ActiveNotebookID = active
	}
	return state
}

func (s *NotebookStorage) read(ctx context.Context, key string) (string, bool) {
	for _, store := range []driven.KeyValueStore{s.primary, s.fallback} {
		if store == nil {
			continue
		}
		v, ok, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("failed to read %s from %s: %v", key, store.Name(), err)
			continue
		}
		if ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// SetActiveNotebook writes only the active pointer to the primary store.
// Failures are logged.
func (s *NotebookStorage) SetActiveNotebook(ctx context.Context, id string) {
	if s.primary == nil {
		return
	}
	var err error
	if id == "" {
		err = s.primary.Delete(ctx, KeyActiveNotebook)
	} else {
		err = s.primary.Set(ctx, KeyActiveNotebook, id)
	}
	if err != nil {
		logger.Warn("failed to set active notebook: %v", err)
	}
}

// CreateNotebook builds a seeded notebook. An empty name becomes
// "Untitled Notebook <date>".
func (s *NotebookStorage) CreateNotebook(name string) domain.Notebook {
	return newNotebook(strings.TrimSpace(name), s.now())
}

// DownloadFile writes content through the file sink.
func (s *NotebookStorage) DownloadFile(ctx context.Context, content, filename, mimeType string) (string, error) {
	if s.sink == nil {
		return "", errors.New("no file sink configured")
	}
	path, err := s.sink.Write(ctx, filename, mimeType, []byte(content))
	if err != nil {
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return path, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]`)

// ExportFilename lower-cases the notebook name, replaces every character
// outside [a-z0-9] with an underscore and appends the format extension.
func (s *NotebookStorage) ExportFilename(name string, format domain.ExportFormat) string {
	base := unsafeFilenameChars.ReplaceAllString(strings.ToLower(name), "_")
	if base == "" {
		base = "notebook"
	}
	return base + "." + format.Extension()
}
