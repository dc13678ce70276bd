package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keydraw/keydraw/pkg/qmk"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle()
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// layoutChoice is one selectable QMK layout variant.
type layoutChoice struct {
	name string
	keys int
}

// layoutListModel is the bubbletea model for picking a layout when a
// keyboard defines several and none was requested on the command line.
type layoutListModel struct {
	choices  []layoutChoice
	cursor   int
	selected string
}

func newLayoutListModel(info *qmk.Info) layoutListModel {
	names := info.LayoutNames()
	choices := make([]layoutChoice, len(names))
	for i, name := range names {
		choices[i] = layoutChoice{name: name, keys: len(info.Layouts[name].Layout)}
	}
	return layoutListModel{choices: choices}
}

func (m layoutListModel) Init() tea.Cmd { return nil }

func (m layoutListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.choices[m.cursor].name
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m layoutListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Select layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, c := range m.choices {
		line := fmt.Sprintf("%-32s %s", c.name, listDimStyle.Render(fmt.Sprintf("%d keys", c.keys)))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickLayout runs the interactive picker and returns the chosen layout
// name, or an empty string if the user quit without selecting.
func pickLayout(info *qmk.Info) (string, error) {
	prog := tea.NewProgram(newLayoutListModel(info))
	final, err := prog.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(layoutListModel)
	if !ok {
		return "", nil
	}
	return m.selected, nil
}
