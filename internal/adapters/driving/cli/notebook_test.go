package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

func TestNotebookList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "notebook", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No notebooks")
}

func TestNotebookCreateAndList(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "", "notebook", "create", "Kelp", "Forest")
	require.NoError(t, err)
	assert.Contains(t, out, `Created "Kelp Forest"`)

	out, err = execute(t, "", "nb", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Kelp Forest")
	assert.Contains(t, out, "CELLS")

	active, ok := env.workspace.Active()
	require.True(t, ok)
	assert.Contains(t, out, active.ID)
}

func TestNotebookList_JSON(t *testing.T) {
	env := setupTestServices(t)
	nb, err := env.workspace.Create(context.Background(), "Reef")
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "list", "--json")
	require.NoError(t, err)

	var got []notebookSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, nb.ID, got[0].ID)
	assert.Equal(t, 5, got[0].Cells)
	assert.True(t, got[0].Active)
}

func TestNotebookSelectAndDelete(t *testing.T) {
	env := setupTestServices(t)
	first, err := env.workspace.Create(context.Background(), "First")
	require.NoError(t, err)
	_, err = env.workspace.Create(context.Background(), "Second")
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "select", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Active notebook: First")

	active, _ := env.workspace.Active()
	assert.Equal(t, first.ID, active.ID)

	out, err = execute(t, "", "notebook", "delete", first.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Deleted "First"`)
	assert.Contains(t, out, "Active notebook: Second")
	assert.Len(t, env.workspace.List(), 1)
}

func TestNotebookDelete_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "notebook", "delete", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveNotebook(t *testing.T) {
	env := setupTestServices(t)
	a, err := env.workspace.Create(context.Background(), "Twin")
	require.NoError(t, err)
	_, err = env.workspace.Create(context.Background(), "Twin")
	require.NoError(t, err)
	c, err := env.workspace.Create(context.Background(), "Solo")
	require.NoError(t, err)

	got, err := resolveNotebook(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = resolveNotebook("solo")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = resolveNotebook("")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID, "empty reference means the active notebook")

	_, err = resolveNotebook("Twin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches 2 notebooks")
}

func TestResolveNotebook_NoActive(t *testing.T) {
	setupTestServices(t)

	_, err := resolveNotebook("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active notebook")
}

func TestNotebookShow_Raw(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.workspace.Create(context.Background(), "Shown")
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "# Shown")
	assert.Contains(t, out, "```go")
}

func TestNotebookExport_ToExportDir(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.workspace.Create(context.Background(), "Tide Log")
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "export", "--format", "ipynb")
	require.NoError(t, err)

	path := filepath.Join(env.exportDir, "tide_log.ipynb")
	assert.Contains(t, out, "Exported to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nbformat": 4`)
}

func TestNotebookExport_Stdout(t *testing.T) {
	env := setupTestServices(t)
	nb, err := env.workspace.Create(context.Background(), "Piped")
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "export", nb.ID, "-f", "json", "-o", "-")
	require.NoError(t, err)

	var got domain.Notebook
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, nb.ID, got.ID)
}

func TestNotebookExport_ToFile(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.workspace.Create(context.Background(), "Filed")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.md")

	_, err = execute(t, "", "notebook", "export", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Filed")
}

func TestNotebookExport_BadFormat(t *testing.T) {
	env := setupTestServices(t)
	_, err := env.workspace.Create(context.Background(), "X")
	require.NoError(t, err)

	_, err = execute(t, "", "notebook", "export", "--format", "pdf")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestNotebookImport_RoundTrip(t *testing.T) {
	env := setupTestServices(t)
	nb, err := env.workspace.Create(context.Background(), "Original")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "original.ipynb")
	_, err = execute(t, "", "notebook", "export", "-f", "ipynb", "-o", path)
	require.NoError(t, err)

	out, err := execute(t, "", "notebook", "import", path)
	require.NoError(t, err)

	assert.Contains(t, out, "with 5 cells")
	require.Len(t, env.workspace.List(), 2)
	active, _ := env.workspace.Active()
	assert.NotEqual(t, nb.ID, active.ID)
}

func TestNotebookImport_UnknownExtension(t *testing.T) {
	setupTestServices(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := execute(t, "", "notebook", "import", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot infer format")
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    domain.ExportFormat
		wantErr bool
	}{
		{"a.ipynb", domain.ExportIPYNB, false},
		{"A.JSON", domain.ExportJSON, false},
		{"a.md", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := formatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
