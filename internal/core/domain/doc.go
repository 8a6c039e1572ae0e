// Package domain defines the core business entities for marinebook.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Notebook: An ordered, named collection of cells
//   - Cell: A unit of notebook content (code or markdown)
//   - CellOutput: The captured result of executing a code cell
//   - NotebookState: The persisted collection plus the active pointer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
