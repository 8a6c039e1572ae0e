package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

var (
	cellType    string
	cellAfter   string
	cellContent string
	cellFile    string
	cellExpand  bool
)

var cellCmd = &cobra.Command{
	Use:   "cell",
	Short: "Edit and run notebook cells",
	Long: `Edit and run the cells of a notebook.

Cells are addressed by ID or by 1-based position. Changes are saved when
the command finishes.`,
}

var cellListCmd = &cobra.Command{
	Use:   "list [notebook]",
	Short: "List the cells of a notebook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCellList,
}

var cellAddCmd = &cobra.Command{
	Use:   "add [notebook]",
	Short: "Add a cell",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCellAdd,
}

var cellEditCmd = &cobra.Command{
	Use:   "edit <notebook> <cell>",
	Short: "Replace the content of a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runCellEdit,
}

var cellDeleteCmd = &cobra.Command{
	Use:   "delete <notebook> <cell>",
	Short: "Delete a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runCellDelete,
}

var cellMoveCmd = &cobra.Command{
	Use:       "move <notebook> <cell> <up|down>",
	Short:     "Move a cell up or down",
	Args:      cobra.ExactArgs(3),
	ValidArgs: []string{"up", "down"},
	RunE:      runCellMove,
}

var cellCollapseCmd = &cobra.Command{
	Use:   "collapse <notebook> <cell>",
	Short: "Collapse or expand the output of a cell",
	Args:  cobra.ExactArgs(2),
	RunE:  runCellCollapse,
}

var cellRunCmd = &cobra.Command{
	Use:   "run <notebook> <cell>",
	Short: "Run a code cell and print its output",
	Args:  cobra.ExactArgs(2),
	RunE:  runCellRun,
}

var cellRunAllCmd = &cobra.Command{
	Use:   "run-all [notebook]",
	Short: "Run every code cell of a notebook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCellRunAll,
}

func init() {
	cellAddCmd.Flags().StringVarP(&cellType, "type", "t", "code", "cell type: code or markdown")
	cellAddCmd.Flags().StringVar(&cellAfter, "after", "", "insert after this cell (default: append)")
	cellAddCmd.Flags().StringVarP(&cellContent, "content", "c", "", "cell content (default: a template)")
	cellAddCmd.Flags().StringVarP(&cellFile, "file", "f", "", "read content from a file, or - for stdin")
	cellEditCmd.Flags().StringVarP(&cellContent, "content", "c", "", "new content")
	cellEditCmd.Flags().StringVarP(&cellFile, "file", "f", "", "read content from a file, or - for stdin")
	cellCollapseCmd.Flags().BoolVar(&cellExpand, "expand", false, "expand instead of collapse")

	cellCmd.AddCommand(cellListCmd)
	cellCmd.AddCommand(cellAddCmd)
	cellCmd.AddCommand(cellEditCmd)
	cellCmd.AddCommand(cellDeleteCmd)
	cellCmd.AddCommand(cellMoveCmd)
	cellCmd.AddCommand(cellCollapseCmd)
	cellCmd.AddCommand(cellRunCmd)
	cellCmd.AddCommand(cellRunAllCmd)
	rootCmd.AddCommand(cellCmd)
}

// withEditor opens a notebook, applies fn and flushes the edits.
func withEditor(cmd *cobra.Command, ref string, fn func(ed driving.NotebookEditor) error) error {
	nb, err := resolveNotebook(ref)
	if err != nil {
		return err
	}
	ed, err := workspaceService.Open(nb.ID)
	if err != nil {
		return err
	}
	fnErr := fn(ed)
	if err := ed.Close(cmd.Context()); err != nil {
		return errors.Join(fnErr, fmt.Errorf("failed to save notebook: %w", err))
	}
	return fnErr
}

// resolveCell finds a cell by ID or 1-based position.
func resolveCell(nb domain.Notebook, ref string) (domain.Cell, error) {
	if cell, ok := nb.Cell(ref); ok {
		return *cell, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(nb.Cells) {
		return nb.Cells[n-1], nil
	}
	return domain.Cell{}, fmt.Errorf("%w: cell %q in %q", domain.ErrNotFound, ref, nb.Name)
}

// readContent returns the content given by --content or --file.
func readContent(cmd *cobra.Command) (string, bool, error) {
	if cmd.Flags().Changed("content") {
		return cellContent, true, nil
	}
	switch cellFile {
	case "":
		return "", false, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	default:
		data, err := os.ReadFile(cellFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", cellFile, err)
		}
		return string(data), true, nil
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 48 {
		line = line[:45] + "..."
	}
	return line
}

func runCellList(cmd *cobra.Command, args []string) error {
	nb, err := resolveNotebook(optionalArg(args))
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(nb.Cells))
	for i := range nb.Cells {
		c := &nb.Cells[i]
		runs := ""
		if c.IsCode() {
			runs = strconv.Itoa(c.ExecutionCountValue())
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), c.ID, c.Type.String(), runs, firstLine(c.Content)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "TYPE", "RUNS", "CONTENT").
		Rows(rows...)
	cmd.Printf("%s\n", nb.Name)
	cmd.Println(t.Render())
	return nil
}

func runCellAdd(cmd *cobra.Command, args []string) error {
	t := domain.CellType(cellType)
	if !t.IsValid() {
		return fmt.Errorf("%w: cell type %q (want code or markdown)", domain.ErrInvalidInput, cellType)
	}
	content, hasContent, err := readContent(cmd)
	if err != nil {
		return err
	}

	return withEditor(cmd, optionalArg(args), func(ed driving.NotebookEditor) error {
		after := ""
		if cellAfter != "" {
			anchor, err := resolveCell(ed.Snapshot(), cellAfter)
			if err != nil {
				return err
			}
			after = anchor.ID
		}
		cell, err := ed.AddCell(t, after)
		if err != nil {
			return err
		}
		if hasContent {
			ed.UpdateCellContent(cell.ID, content)
		}
		snap := ed.Snapshot()
		printSuccess(cmd.OutOrStdout(), "Added %s cell %s at position %d", t, cell.ID, snap.CellIndex(cell.ID)+1)
		return nil
	})
}

func runCellEdit(cmd *cobra.Command, args []string) error {
	content, ok, err := readContent(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("nothing to write; pass --content or --file")
	}

	return withEditor(cmd, args[0], func(ed driving.NotebookEditor) error {
		cell, err := resolveCell(ed.Snapshot(), args[1])
		if err != nil {
			return err
		}
		ed.UpdateCellContent(cell.ID, content)
		printSuccess(cmd.OutOrStdout(), "Updated cell %s", cell.ID)
		return nil
	})
}

func runCellDelete(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, args[0], func(ed driving.NotebookEditor) error {
		cell, err := resolveCell(ed.Snapshot(), args[1])
		if err != nil {
			return err
		}
		if !ed.DeleteCell(cell.ID) {
			return errors.New("cannot delete the last cell of a notebook")
		}
		printSuccess(cmd.OutOrStdout(), "Deleted cell %s", cell.ID)
		return nil
	})
}

func runCellMove(cmd *cobra.Command, args []string) error {
	direction := strings.ToLower(args[2])
	if direction != "up" && direction != "down" {
		return fmt.Errorf("%w: direction %q (want up or down)", domain.ErrInvalidInput, args[2])
	}

	return withEditor(cmd, args[0], func(ed driving.NotebookEditor) error {
		cell, err := resolveCell(ed.Snapshot(), args[1])
		if err != nil {
			return err
		}
		moved, edge := ed.MoveCellUp, "top"
		if direction == "down" {
			moved, edge = ed.MoveCellDown, "bottom"
		}
		if !moved(cell.ID) {
			printWarning(cmd.OutOrStdout(), "Cell %s is already at the %s", cell.ID, edge)
			return nil
		}
		snap := ed.Snapshot()
		printSuccess(cmd.OutOrStdout(), "Moved cell %s to position %d", cell.ID, snap.CellIndex(cell.ID)+1)
		return nil
	})
}

func runCellCollapse(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, args[0], func(ed driving.NotebookEditor) error {
		cell, err := resolveCell(ed.Snapshot(), args[1])
		if err != nil {
			return err
		}
		ed.SetCollapsed(cell.ID, !cellExpand)
		state := "Collapsed"
		if cellExpand {
			state = "Expanded"
		}
		printSuccess(cmd.OutOrStdout(), "%s cell %s", state, cell.ID)
		return nil
	})
}

func runCellRun(cmd *cobra.Command, args []string) error {
	var failed bool
	err := withEditor(cmd, args[0], func(ed driving.NotebookEditor) error {
		cell, err := resolveCell(ed.Snapshot(), args[1])
		if err != nil {
			return err
		}
		if !cell.IsCode() {
			return fmt.Errorf("%w: cell %s is markdown", domain.ErrInvalidInput, cell.ID)
		}
		out, ok := ed.ExecuteCell(cmd.Context(), cell.ID)
		if !ok {
			return fmt.Errorf("cell %s did not run", cell.ID)
		}
		failed = printCellOutput(cmd.OutOrStdout(), out)
		return nil
	})
	if err != nil {
		return err
	}
	if failed {
		return errors.New("cell failed")
	}
	return nil
}

func runCellRunAll(cmd *cobra.Command, args []string) error {
	var failures int
	err := withEditor(cmd, optionalArg(args), func(ed driving.NotebookEditor) error {
		ran := ed.ExecuteAll(cmd.Context())
		for _, cell := range ed.Snapshot().Cells {
			if cell.IsCode() && printCellOutput(cmd.OutOrStdout(), cell) {
				failures++
			}
		}
		cmd.Printf("Ran %d cells\n", ran)
		return nil
	})
	if err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d cells failed", failures)
	}
	return nil
}

// printCellOutput prints a code cell with its output and reports whether
// the run failed.
func printCellOutput(w io.Writer, cell domain.Cell) bool {
	cyan.Fprintf(w, "In [%d]: %s\n", cell.ExecutionCountValue(), firstLine(cell.Content))
	if cell.Output == nil {
		return false
	}
	if cell.Output.Type == domain.OutputTypeError {
		red.Fprintln(w, cell.Output.Content)
		return true
	}
	fmt.Fprintln(w, strings.TrimRight(cell.Output.Content, "\n"))
	return false
}
