package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

var (
	notebookJSON bool
	exportFormat string
	exportOutput string
	importFormat string
	showRaw      bool
)

var notebookCmd = &cobra.Command{
	Use:     "notebook",
	Aliases: []string{"nb"},
	Short:   "Manage notebooks",
	Long: `List, create, delete and export notebooks.

Commands that take a notebook accept its ID, its name or a unique ID
prefix. When the notebook is omitted the active notebook is used.`,
}

var notebookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runNotebookList,
}

var notebookCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a notebook seeded with example cells",
	RunE:  runNotebookCreate,
}

var notebookDeleteCmd = &cobra.Command{
	Use:   "delete <notebook>",
	Short: "Delete a notebook",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotebookDelete,
}

var notebookSelectCmd = &cobra.Command{
	Use:   "select <notebook>",
	Short: "Make a notebook active",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotebookSelect,
}

var notebookShowCmd = &cobra.Command{
	Use:   "show [notebook]",
	Short: "Print a notebook",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotebookShow,
}

var notebookExportCmd = &cobra.Command{
	Use:   "export [notebook]",
	Short: "Export a notebook as json, markdown or ipynb",
	Long: `Export a notebook.

Without --output the file is written to the configured export directory.
Use --output - to print the export instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotebookExport,
}

var notebookImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a json or ipynb export as a new notebook",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotebookImport,
}

func init() {
	notebookListCmd.Flags().BoolVar(&notebookJSON, "json", false, "output as JSON")
	notebookShowCmd.Flags().BoolVar(&showRaw, "raw", false, "print Markdown without terminal rendering")
	notebookExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "export format: json, markdown or ipynb")
	notebookExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, or - for stdout")
	notebookImportCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format (default: from the file extension)")

	notebookCmd.AddCommand(notebookListCmd)
	notebookCmd.AddCommand(notebookCreateCmd)
	notebookCmd.AddCommand(notebookDeleteCmd)
	notebookCmd.AddCommand(notebookSelectCmd)
	notebookCmd.AddCommand(notebookShowCmd)
	notebookCmd.AddCommand(notebookExportCmd)
	notebookCmd.AddCommand(notebookImportCmd)
	rootCmd.AddCommand(notebookCmd)
}

// notebookSummary is the JSON shape of a listed notebook.
type notebookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cells     int    `json:"cells"`
	Active    bool   `json:"active"`
	UpdatedAt string `json:"updatedAt"`
}

func requireWorkspace() error {
	if workspaceService == nil {
		return errors.New("workspace not configured")
	}
	return nil
}

// resolveNotebook finds a notebook by ID, name or unique ID prefix.
// An empty reference means the active notebook.
func resolveNotebook(ref string) (domain.Notebook, error) {
	if err := requireWorkspace(); err != nil {
		return domain.Notebook{}, err
	}
	if ref == "" {
		nb, ok := workspaceService.Active()
		if !ok {
			return domain.Notebook{}, errors.New("no active notebook; pass a notebook ID or name")
		}
		return nb, nil
	}
	if nb, err := workspaceService.Get(ref); err == nil {
		return nb, nil
	}

	var byName, byPrefix []domain.Notebook
	for _, nb := range workspaceService.List() {
		if strings.EqualFold(nb.Name, ref) {
			byName = append(byName, nb)
		}
		if strings.HasPrefix(nb.ID, ref) {
			byPrefix = append(byPrefix, nb)
		}
	}
	for _, matches := range [][]domain.Notebook{byName, byPrefix} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return domain.Notebook{}, fmt.Errorf("%q matches %d notebooks; use the ID", ref, len(matches))
		}
	}
	return domain.Notebook{}, fmt.Errorf("%w: notebook %q", domain.ErrNotFound, ref)
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runNotebookList(cmd *cobra.Command, _ []string) error {
	if err := requireWorkspace(); err != nil {
		return err
	}
	notebooks := workspaceService.List()
	active, _ := workspaceService.Active()

	if notebookJSON {
		out := make([]notebookSummary, 0, len(notebooks))
		for _, nb := range notebooks {
			out = append(out, notebookSummary{
				ID:        nb.ID,
				Name:      nb.Name,
				Cells:     len(nb.Cells),
				Active:    nb.ID == active.ID,
				UpdatedAt: nb.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal notebooks: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(notebooks) == 0 {
		cmd.Println("No notebooks. Create one with: marinebook notebook create <name>")
		return nil
	}

	rows := make([][]string, 0, len(notebooks))
	for _, nb := range notebooks {
		marker := ""
		if nb.ID == active.ID {
			marker = "*"
		}
		rows = append(rows, []string{
			marker, nb.ID, nb.Name, strconv.Itoa(len(nb.Cells)),
			nb.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "NAME", "CELLS", "UPDATED").
		Rows(rows...)
	cmd.Println(t.Render())
	return nil
}

func runNotebookCreate(cmd *cobra.Command, args []string) error {
	if err := requireWorkspace(); err != nil {
		return err
	}
	nb, err := workspaceService.Create(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to create notebook: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Created %q (%s)", nb.Name, nb.ID)
	return nil
}

func runNotebookDelete(cmd *cobra.Command, args []string) error {
	nb, err := resolveNotebook(args[0])
	if err != nil {
		return err
	}
	if err := workspaceService.Delete(cmd.Context(), nb.ID); err != nil {
		return fmt.Errorf("failed to delete notebook: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Deleted %q", nb.Name)
	if active, ok := workspaceService.Active(); ok {
		cmd.Printf("Active notebook: %s (%s)\n", active.Name, active.ID)
	}
	return nil
}

func runNotebookSelect(cmd *cobra.Command, args []string) error {
	nb, err := resolveNotebook(args[0])
	if err != nil {
		return err
	}
	if err := workspaceService.Select(cmd.Context(), nb.ID); err != nil {
		return fmt.Errorf("failed to select notebook: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Active notebook: %s", nb.Name)
	return nil
}

func runNotebookShow(cmd *cobra.Command, args []string) error {
	nb, err := resolveNotebook(optionalArg(args))
	if err != nil {
		return err
	}
	if storageService == nil {
		return errors.New("storage not configured")
	}
	md, err := storageService.ExportNotebook(nb, domain.ExportMarkdown)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !showRaw && isTerminal(out) {
		width := 80
		if f, ok := out.(*os.File); ok {
			if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
				width = w
			}
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err == nil {
			if rendered, err := r.Render(md); err == nil {
				md = rendered
			}
		}
	}
	fmt.Fprint(out, md)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runNotebookExport(cmd *cobra.Command, args []string) error {
	format, err := domain.ParseExportFormat(exportFormat)
	if err != nil {
		return fmt.Errorf("%w: %q (want json, markdown or ipynb)", err, exportFormat)
	}
	nb, err := resolveNotebook(optionalArg(args))
	if err != nil {
		return err
	}
	if storageService == nil {
		return errors.New("storage not configured")
	}
	content, err := storageService.ExportNotebook(nb, format)
	if err != nil {
		return fmt.Errorf("failed to export notebook: %w", err)
	}

	switch exportOutput {
	case "-":
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	case "":
		path, err := storageService.DownloadFile(cmd.Context(), content, storageService.ExportFilename(nb.Name, format), format.MIMEType())
		if err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		printSuccess(cmd.OutOrStdout(), "Exported to %s", path)
		return nil
	default:
		if err := os.WriteFile(exportOutput, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		printSuccess(cmd.OutOrStdout(), "Exported to %s", exportOutput)
		return nil
	}
}

// formatFromPath infers an import format from a file extension.
func formatFromPath(path string) (domain.ExportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ipynb":
		return domain.ExportIPYNB, nil
	case ".json":
		return domain.ExportJSON, nil
	default:
		return "", fmt.Errorf("cannot infer format of %s; pass --format json or --format ipynb", path)
	}
}

func runNotebookImport(cmd *cobra.Command, args []string) error {
	if err := requireWorkspace(); err != nil {
		return err
	}
	path := args[0]

	var format domain.ExportFormat
	var err error
	if importFormat != "" {
		format, err = domain.ParseExportFormat(importFormat)
	} else {
		format, err = formatFromPath(path)
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	nb, err := workspaceService.Import(cmd.Context(), data, format)
	if err != nil {
		return fmt.Errorf("failed to import notebook: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Imported %q with %d cells (%s)", nb.Name, len(nb.Cells), nb.ID)
	return nil
}
