// Package cli provides the marinebook command line interface.
// It is a driving adapter: commands call core services through the
// driving ports installed with SetServices.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
	"github.com/custodia-labs/marinebook/internal/logger"
)

// Build information, set by main.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

// Services installed by main.
var (
	workspaceService driving.WorkspaceService
	storageService   driving.NotebookStorage
	engineService    driving.ExecutionEngine
	settingsService  driving.SettingsService
	tuiLogFile       string
)

// Services groups the driving ports used by the commands.
type Services struct {
	Workspace driving.WorkspaceService
	Storage   driving.NotebookStorage
	Engine    driving.ExecutionEngine
	Settings  driving.SettingsService

	// TUILogFile receives log output while the terminal UI owns the screen.
	TUILogFile string
}

var rootCmd = &cobra.Command{
	Use:   "marinebook",
	Short: "Marine science notebooks in the terminal",
	Long: `marinebook keeps notebooks of Markdown and Go cells for marine field work.

Code cells run in a sandboxed Go interpreter with helpers for ocean
profiles, species diversity and oil spill estimates. Notebooks autosave
and export to JSON, Markdown and Jupyter ipynb.

Run without arguments to open the terminal UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersionInfo sets the build information reported by the version
// command and the --version flag.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	workspaceService = s.Workspace
	storageService = s.Storage
	engineService = s.Engine
	settingsService = s.Settings
	tuiLogFile = s.TUILogFile
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext is Execute with a context that commands observe.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
