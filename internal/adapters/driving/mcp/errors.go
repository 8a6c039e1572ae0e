// Package mcp provides an MCP (Model Context Protocol) server adapter for marinebook.
// It lets AI assistants list, edit, run and export notebooks.
package mcp

import "errors"

// ErrMissingWorkspace is returned when the workspace service is not provided.
var ErrMissingWorkspace = errors.New("mcp: workspace service is required")
