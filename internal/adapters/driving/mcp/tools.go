package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/marinebook/internal/core/domain"
	"github.com/custodia-labs/marinebook/internal/core/ports/driving"
)

// NotebookSummary describes one notebook in tool output.
type NotebookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CellCount int    `json:"cell_count"`
	UpdatedAt string `json:"updated_at"`
	Active    bool   `json:"active"`
}

// CellOutput describes one cell in tool output.
type CellOutput struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Content        string `json:"content"`
	OutputType     string `json:"output_type,omitempty"`
	Output         string `json:"output,omitempty"`
	ExecutionCount int    `json:"execution_count,omitempty"`
}

// ListNotebooksInput is the (empty) input schema for list_notebooks.
type ListNotebooksInput struct{}

// ListNotebooksOutput is the output schema for list_notebooks.
type ListNotebooksOutput struct {
	Notebooks []NotebookSummary `json:"notebooks"`
	Count     int               `json:"count"`
}

// CreateNotebookInput is the input schema for create_notebook.
type CreateNotebookInput struct {
	Name string `json:"name,omitempty" jsonschema:"display name (default: Untitled Notebook <date>)"`
}

// AddCellInput is the input schema for add_cell.
type AddCellInput struct {
	NotebookID  string `json:"notebook_id" jsonschema:"the notebook to edit"`
	Type        string `json:"type" jsonschema:"code or markdown"`
	AfterCellID string `json:"after_cell_id,omitempty" jsonschema:"insert after this cell (default: append)"`
	Content     string `json:"content,omitempty" jsonschema:"initial content (default: a template)"`
}

// UpdateCellInput is the input schema for update_cell.
type UpdateCellInput struct {
	NotebookID string `json:"notebook_id" jsonschema:"the notebook to edit"`
	CellID     string `json:"cell_id" jsonschema:"the cell to change"`
	Content    string `json:"content" jsonschema:"the new cell content"`
}

// ExecuteCellInput is the input schema for execute_cell.
type ExecuteCellInput struct {
	NotebookID string `json:"notebook_id" jsonschema:"the notebook holding the cell"`
	CellID     string `json:"cell_id" jsonschema:"the code cell to run"`
}

// ExportNotebookInput is the input schema for export_notebook.
type ExportNotebookInput struct {
	NotebookID string `json:"notebook_id" jsonschema:"the notebook to export"`
	Format     string `json:"format,omitempty" jsonschema:"json, markdown or ipynb (default markdown)"`
}

// ExportNotebookOutput is the output schema for export_notebook.
type ExportNotebookOutput struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Content  string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_notebooks",
		Description: "List all notebooks, most recently updated first",
	}, s.handleListNotebooks)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_notebook",
		Description: "Create a notebook seeded with marine analysis examples and make it active",
	}, s.handleCreateNotebook)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_cell",
		Description: "Insert a code or markdown cell into a notebook",
	}, s.handleAddCell)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_cell",
		Description: "Replace the content of a cell",
	}, s.handleUpdateCell)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "execute_cell",
		Description: "Run a Go code cell with the marine helpers and return its output",
	}, s.handleExecuteCell)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_notebook",
		Description: "Export a notebook as json, markdown or ipynb",
	}, s.handleExportNotebook)
}

func (s *Server) handleListNotebooks(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListNotebooksInput,
) (*mcp.CallToolResult, ListNotebooksOutput, error) {
	activeID := ""
	if active, ok := s.ports.Workspace.Active(); ok {
		activeID = active.ID
	}

	notebooks := s.ports.Workspace.List()
	output := ListNotebooksOutput{
		Notebooks: make([]NotebookSummary, len(notebooks)),
		Count:     len(notebooks),
	}
	for i := range notebooks {
		output.Notebooks[i] = summarise(notebooks[i], activeID)
	}
	return nil, output, nil
}

func (s *Server) handleCreateNotebook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateNotebookInput,
) (*mcp.CallToolResult, NotebookSummary, error) {
	nb, err := s.ports.Workspace.Create(ctx, input.Name)
	if err != nil {
		return nil, NotebookSummary{}, err
	}
	return nil, summarise(nb, nb.ID), nil
}

func (s *Server) handleAddCell(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddCellInput,
) (*mcp.CallToolResult, CellOutput, error) {
	var out CellOutput
	err := s.withEditor(ctx, input.NotebookID, func(ed driving.NotebookEditor) error {
		cell, err := ed.AddCell(domain.CellType(input.Type), input.AfterCellID)
		if err != nil {
			return err
		}
		if input.Content != "" {
			ed.UpdateCellContent(cell.ID, input.Content)
			cell.Content = input.Content
		}
		out = toCellOutput(cell)
		return nil
	})
	return nil, out, err
}

func (s *Server) handleUpdateCell(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateCellInput,
) (*mcp.CallToolResult, CellOutput, error) {
	var out CellOutput
	err := s.withEditor(ctx, input.NotebookID, func(ed driving.NotebookEditor) error {
		if !ed.UpdateCellContent(input.CellID, input.Content) {
			return fmt.Errorf("cell %s: %w", input.CellID, domain.ErrNotFound)
		}
		out, _ = findCell(ed.Snapshot(), input.CellID)
		return nil
	})
	return nil, out, err
}

func (s *Server) handleExecuteCell(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExecuteCellInput,
) (*mcp.CallToolResult, CellOutput, error) {
	var out CellOutput
	err := s.withEditor(ctx, input.NotebookID, func(ed driving.NotebookEditor) error {
		cell, ok := ed.ExecuteCell(ctx, input.CellID)
		if !ok {
			return fmt.Errorf("%w: cell %s is not a runnable code cell", domain.ErrInvalidInput, input.CellID)
		}
		out = toCellOutput(cell)
		return nil
	})
	return nil, out, err
}

func (s *Server) handleExportNotebook(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportNotebookInput,
) (*mcp.CallToolResult, ExportNotebookOutput, error) {
	name := input.Format
	if name == "" {
		name = domain.ExportMarkdown.String()
	}
	format, err := domain.ParseExportFormat(name)
	if err != nil {
		return nil, ExportNotebookOutput{}, err
	}

	var out ExportNotebookOutput
	err = s.withEditor(ctx, input.NotebookID, func(ed driving.NotebookEditor) error {
		content, err := ed.ExportCurrent(format)
		if err != nil {
			return err
		}
		nb := ed.Snapshot()
		out = ExportNotebookOutput{
			Filename: nb.ID + "." + format.Extension(),
			MIMEType: format.MIMEType(),
			Content:  content,
		}
		if s.ports.Storage != nil {
			out.Filename = s.ports.Storage.ExportFilename(nb.Name, format)
		}
		return nil
	})
	return nil, out, err
}

// withEditor opens the notebook, applies fn and flushes edits before returning.
func (s *Server) withEditor(ctx context.Context, notebookID string, fn func(driving.NotebookEditor) error) error {
	ed, err := s.ports.Workspace.Open(notebookID)
	if err != nil {
		return err
	}
	fnErr := fn(ed)
	if err := ed.Close(ctx); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func summarise(nb domain.Notebook, activeID string) NotebookSummary {
	return NotebookSummary{
		ID:        nb.ID,
		Name:      nb.Name,
		CellCount: len(nb.Cells),
		UpdatedAt: nb.UpdatedAt.Format("2006-01-02 15:04:05"),
		Active:    nb.ID == activeID,
	}
}

func toCellOutput(cell domain.Cell) CellOutput {
	out := CellOutput{
		ID:             cell.ID,
		Type:           cell.Type.String(),
		Content:        cell.Content,
		ExecutionCount: cell.ExecutionCountValue(),
	}
	if cell.Output != nil {
		out.OutputType = string(cell.Output.Type)
		out.Output = cell.Output.Content
	}
	return out
}

func findCell(nb domain.Notebook, cellID string) (CellOutput, bool) {
	for _, c := range nb.Cells {
		if c.ID == cellID {
			return toCellOutput(c), true
		}
	}
	return CellOutput{}, false
}
