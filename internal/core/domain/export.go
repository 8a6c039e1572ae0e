package domain

import "strings"

// ExportFormat identifies a notebook serialisation.
type ExportFormat string

// Available export formats.
const (
	// ExportJSON is the lossless structured format, suitable for re-import.
	ExportJSON ExportFormat = "json"

	// ExportMarkdown is the human-readable narrative rendering.
	ExportMarkdown ExportFormat = "markdown"

	// ExportIPYNB is the Jupyter nbformat 4 document.
	ExportIPYNB ExportFormat = "ipynb"
)

// ParseExportFormat converts user input to an ExportFormat.
// "md" is accepted as an alias for markdown.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return ExportJSON, nil
	case "markdown", "md":
		return ExportMarkdown, nil
	case "ipynb", "jupyter":
		return ExportIPYNB, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Extension returns the file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportJSON:
		return "json"
	case ExportMarkdown:
		return "md"
	case ExportIPYNB:
		return "ipynb"
	default:
		return "txt"
	}
}

// MIMEType returns the media type used when writing the export to a file.
func (f ExportFormat) MIMEType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportMarkdown:
		return "text/markdown"
	case ExportIPYNB:
		return "application/x-ipynb+json"
	default:
		return "text/plain"
	}
}

// String returns the string representation.
func (f ExportFormat) String() string {
	return string(f)
}
