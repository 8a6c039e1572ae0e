package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for marinebook resources.
	uriScheme = "marinebook://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing notebooks.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "notebooks",
		Name:        "notebooks",
		Description: "Summary of every notebook",
		MIMEType:    "application/json",
	}, s.handleNotebooksResource)

	// Template for a full notebook.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "notebooks/{notebookId}",
		Name:        "notebook",
		Description: "A notebook with all cells and outputs",
		MIMEType:    "application/json",
	}, s.handleNotebookResource)
}

// handleNotebooksResource returns a summary list of all notebooks.
func (s *Server) handleNotebooksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, list, err := s.handleListNotebooks(ctx, nil, ListNotebooksInput{})
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(list.Notebooks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling notebooks: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleNotebookResource returns one notebook in its JSON export form.
func (s *Server) handleNotebookResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract notebookId from URI: marinebook://notebooks/{notebookId}
	id := extractNotebookID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	nb, err := s.ports.Workspace.Get(id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(nb, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling notebook: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractNotebookID extracts the ID from a URI like marinebook://notebooks/{notebookId}.
func extractNotebookID(uri string) string {
	const prefix = uriScheme + "notebooks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
