package domain

import "time"

// CellType identifies the kind of content a cell holds.
// It is fixed when the cell is created.
type CellType string

// Available cell types.
const (
	// CellTypeCode holds Go source executed by the execution engine.
	CellTypeCode CellType = "code"

	// CellTypeMarkdown holds narrative text rendered as Markdown.
	CellTypeMarkdown CellType = "markdown"
)

// IsValid returns true if the cell type is recognised.
func (t CellType) IsValid() bool {
	return t == CellTypeCode || t == CellTypeMarkdown
}

// String returns the string representation.
func (t CellType) String() string {
	return string(t)
}

// OutputType classifies a cell output.
type OutputType string

// Available output types.
const (
	// OutputTypeText is captured output from a successful execution.
	OutputTypeText OutputType = "text"

	// OutputTypeError is the message of a failed execution.
	OutputTypeError OutputType = "error"
)

// Notebook is an ordered, named collection of cells.
// A notebook always holds at least one cell.
type Notebook struct {
	// ID is the unique identifier, assigned at creation and never changed.
	ID string `json:"id"`

	// Name is the display name. It is not required to be unique.
	Name string `json:"name"`

	// Cells is the ordered cell sequence. Order defines reading and
	// execution order and is preserved by every export format.
	Cells []Cell `json:"cells"`

	// CreatedAt is set once when the notebook is created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt advances on every mutation.
	UpdatedAt time.Time `json:"updatedAt"`

	// Metadata is informational only.
	Metadata NotebookMetadata `json:"metadata"`
}

// NotebookMetadata describes the execution environment of a notebook.
type NotebookMetadata struct {
	Language   string `json:"language"`
	KernelName string `json:"kernelName"`
}

// Cell is one unit of notebook content.
type Cell struct {
	// ID is unique within the owning notebook and never changes.
	ID string `json:"id"`

	// Type is code or markdown.
	Type CellType `json:"type"`

	// Content is the raw editable text.
	Content string `json:"content"`

	// Output is present only on code cells executed at least once.
	Output *CellOutput `json:"output,omitempty"`

	// Metadata holds execution bookkeeping.
	Metadata CellMetadata `json:"metadata"`
}

// CellOutput is the captured result of the latest execution of a cell.
type CellOutput struct {
	Type    OutputType `json:"type"`
	Content string     `json:"content"`

	// ExecutionTime is the wall-clock duration in milliseconds.
	ExecutionTime *int64 `json:"executionTime,omitempty"`
}

// CellMetadata holds per-cell bookkeeping.
type CellMetadata struct {
	// ExecutionCount increments by exactly one on every execution attempt.
	ExecutionCount *int `json:"executionCount,omitempty"`

	Collapsed *bool `json:"collapsed,omitempty"`
}

// NotebookState is the full persisted structure: every notebook keyed by
// ID plus the active notebook pointer. An empty ActiveNotebookID means no
// notebook is selected.
type NotebookState struct {
	Notebooks        map[string]Notebook
	ActiveNotebookID string
}

// IsCode reports whether the cell is executable.
func (c *Cell) IsCode() bool {
	return c.Type == CellTypeCode
}

// ExecutionCountValue returns the execution count, or 0 when never run.
func (c *Cell) ExecutionCountValue() int {
	if c.Metadata.ExecutionCount == nil {
		return 0
	}
	return *c.Metadata.ExecutionCount
}

// IsCollapsed reports whether the cell is collapsed in the UI.
func (c *Cell) IsCollapsed() bool {
	return c.Metadata.Collapsed != nil && *c.Metadata.Collapsed
}

// Clone returns a deep copy of the cell.
func (c Cell) Clone() Cell {
	out := c
	if c.Output != nil {
		o := *c.Output
		if c.Output.ExecutionTime != nil {
			ms := *c.Output.ExecutionTime
			o.ExecutionTime = &ms
		}
		out.Output = &o
	}
	if c.Metadata.ExecutionCount != nil {
		n := *c.Metadata.ExecutionCount
		out.Metadata.ExecutionCount = &n
	}
	if c.Metadata.Collapsed != nil {
		b := *c.Metadata.Collapsed
		out.Metadata.Collapsed = &b
	}
	return out
}

// Clone returns a deep copy of the notebook.
func (n Notebook) Clone() Notebook {
	out := n
	if n.Cells != nil {
		out.Cells = make([]Cell, len(n.Cells))
		for i := range n.Cells {
			out.Cells[i] = n.Cells[i].Clone()
		}
	}
	return out
}

// CellIndex returns the position of the cell with the given ID, or -1.
func (n *Notebook) CellIndex(cellID string) int {
	for i := range n.Cells {
		if n.Cells[i].ID == cellID {
			return i
		}
	}
	return -1
}

// Cell returns the cell with the given ID.
func (n *Notebook) Cell(cellID string) (*Cell, bool) {
	idx := n.CellIndex(cellID)
	if idx < 0 {
		return nil, false
	}
	return &n.Cells[idx], true
}

// EmptyState returns a state with no notebooks and no active pointer.
func EmptyState() NotebookState {
	return NotebookState{Notebooks: make(map[string]Notebook)}
}
