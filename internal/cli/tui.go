package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/diagramsmith/pkg/diagram"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// typeDescriptions gives one line of guidance per diagram type.
var typeDescriptions = map[diagram.Type]string{
	diagram.TypeFlowchart:      "decision paths and branching logic",
	diagram.TypeConceptMap:     "related ideas without strict ordering",
	diagram.TypeProcessDiagram: "sequential steps with a clear direction",
	diagram.TypeHierarchy:      "parent-child or containment structure",
	diagram.TypeComparison:     "side-by-side alternatives",
	diagram.TypeTimeline:       "events ordered in time",
	diagram.TypeCycle:          "repeating loops and feedback",
}

// TypePickerModel is the bubbletea model for interactive diagram type
// selection, used by generate --pick-type.
type TypePickerModel struct {
	Types    []diagram.Type
	Cursor   int
	Selected diagram.Type
}

// NewTypePickerModel creates a picker over all supported diagram types.
func NewTypePickerModel() TypePickerModel {
	return TypePickerModel{Types: diagram.Types}
}

func (m TypePickerModel) Init() tea.Cmd {
	return nil
}

func (m TypePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Types)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Types[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m TypePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram Type"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, t := range m.Types {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-16s %s", cursor, t, listDimStyle.Render(typeDescriptions[t]))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Types))))
	return b.String()
}

// pickType runs the interactive picker and returns the chosen type, or ""
// when the user quit without selecting.
func pickType() (diagram.Type, error) {
	p := tea.NewProgram(NewTypePickerModel())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("type picker: %w", err)
	}
	m, ok := final.(TypePickerModel)
	if !ok {
		return "", nil
	}
	return m.Selected, nil
}
