// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/marinebook/internal/core/domain"
)

// NotebookList displays notebooks in a navigable list.
type NotebookList struct {
	notebooks []domain.Notebook
	activeID  string
	selected  int
	styles    *styles.Styles
	width     int
	height    int
}

// NewNotebookList creates a new notebook list component.
func NewNotebookList(s *styles.Styles) *NotebookList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &NotebookList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *NotebookList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *NotebookList) Update(msg tea.Msg) (*NotebookList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home", "g":
			l.selected = 0
		case "end", "G":
			if len(l.notebooks) > 0 {
				l.selected = len(l.notebooks) - 1
			}
		}
	}
	return l, nil
}

// View renders the list.
func (l *NotebookList) View() string {
	if len(l.notebooks) == 0 {
		return l.styles.Muted.Render("No notebooks yet. Press n to create one.")
	}

	lines := make([]string, 0, len(l.notebooks)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Notebooks (%d)", len(l.notebooks))), "")

	// Two lines per notebook.
	visible := (l.height - 2) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.notebooks) {
		end = len(l.notebooks)
	}

	for i := start; i < end; i++ {
		nb := l.notebooks[i]
		marker := "  "
		if nb.ID == l.activeID {
			marker = "* "
		}
		title := marker + nb.Name
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render(title))
		} else {
			lines = append(lines, l.styles.Normal.Render(title))
		}
		detail := fmt.Sprintf("    %d cells, updated %s", len(nb.Cells), nb.UpdatedAt.Local().Format("2006-01-02 15:04"))
		lines = append(lines, l.styles.Muted.Render(detail))
	}

	return strings.Join(lines, "\n")
}

// SetNotebooks replaces the list contents, keeping the cursor in range.
func (l *NotebookList) SetNotebooks(notebooks []domain.Notebook, activeID string) {
	l.notebooks = notebooks
	l.activeID = activeID
	if l.selected >= len(notebooks) {
		l.selected = len(notebooks) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Notebooks returns the listed notebooks.
func (l *NotebookList) Notebooks() []domain.Notebook {
	return l.notebooks
}

// SelectByID moves the cursor to a notebook. Unknown IDs leave it in place.
func (l *NotebookList) SelectByID(id string) {
	for i := range l.notebooks {
		if l.notebooks[i].ID == id {
			l.selected = i
			return
		}
	}
}

// Selected returns the notebook under the cursor.
func (l *NotebookList) Selected() (domain.Notebook, bool) {
	if len(l.notebooks) == 0 {
		return domain.Notebook{}, false
	}
	return l.notebooks[l.selected], true
}

// SelectedIndex returns the cursor position.
func (l *NotebookList) SelectedIndex() int {
	return l.selected
}

// MoveUp moves the cursor up.
func (l *NotebookList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *NotebookList) MoveDown() {
	if l.selected < len(l.notebooks)-1 {
		l.selected++
	}
}

// SetSize sets the list dimensions.
func (l *NotebookList) SetSize(width, height int) {
	l.width = width
	l.height = height
}
