package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marinebook/internal/adapters/driven/config/file"
	"github.com/custodia-labs/marinebook/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driven"
	"github.com/custodia-labs/marinebook/internal/core/services"
)

func init() {
	color.NoColor = true
}

// scriptRuntime prints "ran" and fails on sources containing "boom".
type scriptRuntime struct{}

func (scriptRuntime) Run(_ context.Context, source string, stdout io.Writer) (driven.RunResult, error) {
	if strings.Contains(source, "boom") {
		return driven.RunResult{}, errors.New("undefined: boom")
	}
	_, err := io.WriteString(stdout, "ran")
	return driven.RunResult{}, err
}

type testEnv struct {
	workspace *services.Workspace
	exportDir string
	config    *memory.ConfigStore
}

// setupTestServices installs real services over in-memory stores.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	storage := services.NewNotebookStorage(memory.NewKVStore("test", 0, 0), nil, file.NewDownloadSink(dir))
	engine := services.NewExecutionEngine(scriptRuntime{}, domain.ExecutionSettings{})
	ws := services.NewWorkspace(storage, engine, services.EditorOptions{})
	require.NoError(t, ws.Load(context.Background()))
	config := memory.NewConfigStore()

	SetServices(Services{
		Workspace: ws,
		Storage:   storage,
		Engine:    engine,
		Settings:  services.NewSettingsService(config),
	})
	t.Cleanup(func() { SetServices(Services{}) })
	return &testEnv{workspace: ws, exportDir: dir, config: config}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "marinebook", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"notebook", "cell", "run", "settings", "tui", "mcp", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestExecute_PrintsError(t *testing.T) {
	SetServices(Services{})
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"notebook", "list"})
	defer rootCmd.SetArgs(nil)

	err := Execute()

	require.Error(t, err)
	assert.Contains(t, buf.String(), "Error: workspace not configured")
}

func TestTUI_RequiresWorkspace(t *testing.T) {
	SetServices(Services{})

	_, err := execute(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace service is required")
}

func TestMCPServe_RequiresWorkspace(t *testing.T) {
	SetServices(Services{})

	_, err := execute(t, "", "mcp", "serve")

	require.Error(t, err)
}

func TestMCPServe_RejectsBadPort(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "mcp", "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between")
}
