// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/marinebook/internal/adapters/driving/tui/styles"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool // selecting this item quits the app
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	active   string
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Notebooks", View: messages.ViewNotebooks},
			{Label: "Continue editing", View: messages.ViewEditor},
			{Label: "Settings", View: messages.ViewSettings},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			v.move(-1)
			return v, nil

		case "down", "j":
			v.move(1)
			return v, nil

		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// move steps the cursor, skipping "Continue editing" when nothing is active.
func (v *View) move(delta int) {
	next := v.selected + delta
	for next >= 0 && next < len(v.items) {
		if v.enabled(v.items[next]) {
			v.selected = next
			return
		}
		next += delta
	}
}

func (v *View) enabled(item Item) bool {
	return item.View != messages.ViewEditor || v.active != ""
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Marinebook"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Notebooks for marine field work"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := item.Label
		if item.View == messages.ViewEditor {
			if v.active == "" {
				b.WriteString("  " + v.styles.Muted.Render(label) + "\n")
				continue
			}
			label = fmt.Sprintf("%s (%s)", label, v.active)
		}

		if i == v.selected {
			b.WriteString("> " + v.styles.Subtitle.Render(label) + "\n")
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetActiveNotebook names the notebook "Continue editing" reopens.
// An empty name disables the item.
func (v *View) SetActiveNotebook(name string) {
	v.active = name
	if name == "" && v.items[v.selected].View == messages.ViewEditor {
		v.selected = 0
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
