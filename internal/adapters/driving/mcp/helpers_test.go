package mcp

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/services"
)

// echoRuntime prints the cell source back.
type echoRuntime struct{}

func (echoRuntime) Run(_ context.Context, source string, stdout io.Writer) (driven.RunResult, error) {
	_, err := io.WriteString(stdout, "echo: "+source)
	return driven.RunResult{}, err
}

func newTestServer(t *testing.T) (*Server, *services.Workspace) {
	t.Helper()
	storage := services.NewNotebookStorage(memory.NewKVStore("test", 0, 0), nil, nil)
	engine := services.NewExecutionEngine(echoRuntime{}, domain.ExecutionSettings{})
	ws := services.NewWorkspace(storage, engine, services.EditorOptions{})
	require.NoError(t, ws.Load(context.Background()))

	server, err := NewServer(&Ports{Workspace: ws, Storage: storage})
	require.NoError(t, err)
	return server, ws
}
