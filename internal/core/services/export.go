package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/marinebook/internal/core/domain"
)

const (
	dateLayout           = "2006-01-02"
	importedNotebookName = "Imported Notebook"
	ipynbFormat          = 4
	ipynbFormatMinor     = 5
)

// ExportNotebook serialises a notebook.
//
// json is lossless and suitable for ImportNotebook. markdown is a narrative
// rendering: markdown cells verbatim, code cells as fenced go blocks labelled
// with their 1-based position, each followed by its output when present.
// ipynb is a Jupyter nbformat 4 document.
func (s *NotebookStorage) ExportNotebook(nb domain.Notebook, format domain.ExportFormat) (string, error) {
	switch format {
	case domain.ExportJSON:
		data, err := json.MarshalIndent(nb, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode notebook: %w", err)
		}
		return string(data), nil
	case domain.ExportMarkdown:
		return renderMarkdown(nb), nil
	case domain.ExportIPYNB:
		data, err := json.MarshalIndent(toIPYNB(nb), "", " ")
		if err != nil {
			return "", fmt.Errorf("encode ipynb: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

func renderMarkdown(nb domain.Notebook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", nb.Name)
	fmt.Fprintf(&b, "*Created: %s*\n", nb.CreatedAt.Format(dateLayout))
	fmt.Fprintf(&b, "*Updated: %s*\n\n", nb.UpdatedAt.Format(dateLayout))

	for i, cell := range nb.Cells {
		if cell.Type == domain.CellTypeMarkdown {
			b.WriteString(cell.Content)
			b.WriteString("\n\n")
			continue
		}
		fmt.Fprintf(&b, "## Cell %d (Code)\n\n", i+1)
		fmt.Fprintf(&b, "```go\n%s\n```\n\n", cell.Content)
		if cell.Output != nil {
			fmt.Fprintf(&b, "**Output:**\n```\n%s\n```\n\n", cell.Output.Content)
		}
	}
	return b.String()
}

// ImportNotebook parses a json or ipynb export. The result always gets a
// fresh notebook ID; cells keep their IDs unless missing or duplicated.
// An input without cells is rejected.
func (s *NotebookStorage) ImportNotebook(data []byte, format domain.ExportFormat) (domain.Notebook, error) {
	var (
		nb  domain.Notebook
		err error
	)
	switch format {
	case domain.ExportJSON:
		err = json.Unmarshal(data, &nb)
	case domain.ExportIPYNB:
		nb, err = fromIPYNB(data)
	default:
		return domain.Notebook{}, fmt.Errorf("%w: cannot import %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return domain.Notebook{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return s.normaliseImport(nb)
}

func (s *NotebookStorage) normaliseImport(nb domain.Notebook) (domain.Notebook, error) {
	if len(nb.Cells) == 0 {
		return domain.Notebook{}, fmt.Errorf("%w: notebook has no cells", domain.ErrInvalidInput)
	}

	now := s.now()
	nb.ID = NewNotebookID()
	if strings.TrimSpace(nb.Name) == "" {
		nb.Name = importedNotebookName
	}
	if nb.CreatedAt.IsZero() {
		nb.CreatedAt = now
	}
	nb.UpdatedAt = now
	if nb.Metadata.Language == "" {
		nb.Metadata.Language = notebookLanguage
	}
	if nb.Metadata.KernelName == "" {
		nb.Metadata.KernelName = notebookKernelName
	}

	seen := make(map[string]bool, len(nb.Cells))
	for i := range nb.Cells {
		cell := &nb.Cells[i]
		if !cell.Type.IsValid() {
			return domain.Notebook{}, fmt.Errorf("%w: cell %d has type %q", domain.ErrInvalidInput, i+1, cell.Type)
		}
		if cell.ID == "" || seen[cell.ID] {
			cell.ID = NewCellID()
		}
		seen[cell.ID] = true
	}
	return nb, nil
}

// Jupyter nbformat 4 document types.

type ipynbDocument struct {
	Cells         []json.RawMessage `json:"cells"`
	Metadata      ipynbMetadata     `json:"metadata"`
	NBFormat      int               `json:"nbformat"`
	NBFormatMinor int               `json:"nbformat_minor"`
}

type ipynbMetadata struct {
	KernelSpec   *ipynbKernelSpec `json:"kernelspec,omitempty"`
	LanguageInfo *ipynbLangInfo   `json:"language_info,omitempty"`
	Title        string           `json:"title,omitempty"`
	Marinebook   *ipynbOrigin     `json:"marinebook,omitempty"`
}

type ipynbKernelSpec struct {
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
	Name        string `json:"name"`
}

type ipynbLangInfo struct {
	Name string `json:"name"`
}

type ipynbOrigin struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ipynbCellMetadata struct {
	Collapsed  *bool           `json:"collapsed,omitempty"`
	Marinebook *ipynbCellStats `json:"marinebook,omitempty"`
}

type ipynbCellStats struct {
	ExecutionTime *int64 `json:"executionTime,omitempty"`
}

type ipynbMarkdownCell struct {
	CellType string            `json:"cell_type"`
	ID       string            `json:"id"`
	Metadata ipynbCellMetadata `json:"metadata"`
	Source   ipynbText         `json:"source"`
}

type ipynbCodeCell struct {
	CellType       string            `json:"cell_type"`
	ExecutionCount *int              `json:"execution_count"`
	ID             string            `json:"id"`
	Metadata       ipynbCellMetadata `json:"metadata"`
	Outputs        []ipynbOutput     `json:"outputs"`
	Source         ipynbText         `json:"source"`
}

type ipynbOutput struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name,omitempty"`
	Text       ipynbText                  `json:"text,omitempty"`
	Data       map[string]json.RawMessage `json:"data,omitempty"`
	EName      string                     `json:"ename,omitempty"`
	EValue     string                     `json:"evalue,omitempty"`
	Traceback  []string                   `json:"traceback,omitempty"`
}

// ipynbCell is the decoding view of either cell kind.
type ipynbCell struct {
	CellType       string            `json:"cell_type"`
	ExecutionCount *int              `json:"execution_count"`
	ID             string            `json:"id"`
	Metadata       ipynbCellMetadata `json:"metadata"`
	Outputs        []ipynbOutput     `json:"outputs"`
	Source         ipynbText         `json:"source"`
}

// ipynbText is multiline text stored either as one string or as a list
// of lines, each keeping its trailing newline.
type ipynbText string

// MarshalJSON encodes the text as a list of lines.
func (t ipynbText) MarshalJSON() ([]byte, error) {
	return json.Marshal(splitLines(string(t)))
}

// UnmarshalJSON accepts a string or a list of strings.
func (t *ipynbText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ipynbText(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("text must be a string or list of strings: %w", err)
	}
	*t = ipynbText(strings.Join(lines, ""))
	return nil
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func toIPYNB(nb domain.Notebook) ipynbDocument {
	doc := ipynbDocument{
		Cells: make([]json.RawMessage, 0, len(nb.Cells)),
		Metadata: ipynbMetadata{
			KernelSpec: &ipynbKernelSpec{
				DisplayName: "Go (yaegi)",
				Language:    notebookLanguage,
				Name:        notebookKernelName,
			},
			LanguageInfo: &ipynbLangInfo{Name: notebookLanguage},
			Title:        nb.Name,
			Marinebook: &ipynbOrigin{
				ID:        nb.ID,
				CreatedAt: nb.CreatedAt,
				UpdatedAt: nb.UpdatedAt,
			},
		},
		NBFormat:      ipynbFormat,
		NBFormatMinor: ipynbFormatMinor,
	}

	for _, cell := range nb.Cells {
		meta := ipynbCellMetadata{Collapsed: cell.Metadata.Collapsed}
		var v any
		if cell.Type == domain.CellTypeMarkdown {
			v = ipynbMarkdownCell{CellType: "markdown", ID: cell.ID, Metadata: meta, Source: ipynbText(cell.Content)}
		} else {
			code := ipynbCodeCell{
				CellType:       "code",
				ExecutionCount: cell.Metadata.ExecutionCount,
				ID:             cell.ID,
				Metadata:       meta,
				Outputs:        []ipynbOutput{},
				Source:         ipynbText(cell.Content),
			}
			if cell.Output != nil {
				if cell.Output.ExecutionTime != nil {
					code.Metadata.Marinebook = &ipynbCellStats{ExecutionTime: cell.Output.ExecutionTime}
				}
				code.Outputs = append(code.Outputs, outputToIPYNB(*cell.Output))
			}
			v = code
		}
		// Both cell structs contain only encodable fields.
		raw, _ := json.Marshal(v)
		doc.Cells = append(doc.Cells, raw)
	}
	return doc
}

func outputToIPYNB(out domain.CellOutput) ipynbOutput {
	if out.Type == domain.OutputTypeError {
		return ipynbOutput{
			OutputType: "error",
			EName:      "Error",
			EValue:     out.Content,
			Traceback:  []string{out.Content},
		}
	}
	return ipynbOutput{OutputType: "stream", Name: "stdout", Text: ipynbText(out.Content)}
}

func fromIPYNB(data []byte) (domain.Notebook, error) {
	var doc ipynbDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Notebook{}, err
	}
	if doc.NBFormat != 0 && doc.NBFormat < ipynbFormat {
		return domain.Notebook{}, fmt.Errorf("nbformat %d is not supported", doc.NBFormat)
	}

	nb := domain.Notebook{
		Name:  doc.Metadata.Title,
		Cells: make([]domain.Cell, 0, len(doc.Cells)),
	}
	if origin := doc.Metadata.Marinebook; origin != nil {
		nb.CreatedAt = origin.CreatedAt
	}

	for _, raw := range doc.Cells {
		var c ipynbCell
		if err := json.Unmarshal(raw, &c); err != nil {
			return domain.Notebook{}, err
		}
		cell := domain.Cell{
			ID:      c.ID,
			Type:    domain.CellTypeMarkdown,
			Content: string(c.Source),
			Metadata: domain.CellMetadata{
				Collapsed: c.Metadata.Collapsed,
			},
		}
		if c.CellType == "code" {
			cell.Type = domain.CellTypeCode
			cell.Metadata.ExecutionCount = c.ExecutionCount
			cell.Output = outputFromIPYNB(c.Outputs)
			if cell.Output != nil && c.Metadata.Marinebook != nil {
				cell.Output.ExecutionTime = c.Metadata.Marinebook.ExecutionTime
			}
		}
		nb.Cells = append(nb.Cells, cell)
	}
	return nb, nil
}

func outputFromIPYNB(outputs []ipynbOutput) *domain.CellOutput {
	if len(outputs) == 0 {
		return nil
	}
	var text strings.Builder
	for _, o := range outputs {
		switch o.OutputType {
		case "error":
			msg := o.EValue
			if msg == "" {
				msg = strings.Join(o.Traceback, "\n")
			}
			return &domain.CellOutput{Type: domain.OutputTypeError, Content: msg}
		case "stream":
			text.WriteString(string(o.Text))
		case "execute_result", "display_data":
			var plain ipynbText
			if raw, ok := o.Data["text/plain"]; ok && json.Unmarshal(raw, &plain) == nil {
				text.WriteString(string(plain))
			}
		}
	}
	return &domain.CellOutput{Type: domain.OutputTypeText, Content: text.String()}
}
