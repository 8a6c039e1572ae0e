package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run Go source outside a notebook",
	Long: `Run a Go source file, or source piped on stdin, in the same sandbox as
notebook code cells. The marine helpers are imported as marine.

Example:
  echo 'fmt.Println(marine.FormatTemperature(12.5))' | marinebook run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if engineService == nil {
		return errors.New("execution engine not configured")
	}

	var (
		source []byte
		err    error
	)
	switch {
	case len(args) == 1 && args[0] != "-":
		source, err = os.ReadFile(args[0])
	case len(args) == 1 || !stdinIsTerminal():
		source, err = io.ReadAll(cmd.InOrStdin())
	default:
		return errors.New("no source; pass a file or pipe code on stdin")
	}
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	result := engineService.Execute(cmd.Context(), string(source))
	if result.Failed() {
		return errors.New(result.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(result.Output, "\n"))
	return nil
}
