package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/floorplanner/pkg/floorplan"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PairPickerModel - Interactive selection of two modules
// =============================================================================

// PairPickerModel is the bubbletea model that lets the user mark the two
// modules whose distance should be reduced.
type PairPickerModel struct {
	Modules  []floorplan.Module
	Cursor   int
	Marked   []int // indices into Modules, at most two
	Done     bool  // two modules were confirmed
	Height   int
	Offset   int
	quitting bool
}

// NewPairPickerModel creates a picker over modules. Net members start
// marked when there are exactly two of them.
func NewPairPickerModel(modules []floorplan.Module) PairPickerModel {
	m := PairPickerModel{Modules: modules, Height: 15}
	var net []int
	for i, mod := range modules {
		if mod.IsNet() {
			net = append(net, i)
		}
	}
	if len(net) == 2 {
		m.Marked = net
	}
	return m
}

// Pair returns the IDs of the two marked modules.
func (m PairPickerModel) Pair() (string, string, bool) {
	if !m.Done || len(m.Marked) != 2 {
		return "", "", false
	}
	return m.Modules[m.Marked[0]].ID, m.Modules[m.Marked[1]].ID, true
}

func (m PairPickerModel) Init() tea.Cmd {
	return nil
}

func (m PairPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Modules)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			m.toggle(m.Cursor)
		case "enter":
			if len(m.Marked) < 2 {
				m.toggle(m.Cursor)
			}
			if len(m.Marked) == 2 {
				m.Done = true
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

// toggle marks or unmarks module i. Marking a third module drops the
// oldest mark.
func (m *PairPickerModel) toggle(i int) {
	for j, k := range m.Marked {
		if k == i {
			m.Marked = append(m.Marked[:j:j], m.Marked[j+1:]...)
			return
		}
	}
	if len(m.Marked) == 2 {
		m.Marked = m.Marked[1:]
	}
	m.Marked = append(m.Marked, i)
}

func (m PairPickerModel) marked(i int) bool {
	for _, k := range m.Marked {
		if k == i {
			return true
		}
	}
	return false
}

func (m PairPickerModel) View() string {
	if m.quitting || m.Done {
		return ""
	}
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Two Modules"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space mark  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Modules))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		mod := m.Modules[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.marked(i) {
			mark = "●"
		}
		net := ""
		if mod.IsNet() {
			net = mod.Sign.String()
		}
		rows = append(rows, []string{cursor, mark, mod.ID, mod.Rect.String(), net})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Module", "Rect", "Net").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx >= len(m.Modules):
				return lipgloss.NewStyle()
			case m.marked(idx):
				return listSelectedStyle
			case idx == m.Cursor:
				return listNormalStyle.Bold(true)
			default:
				return listNormalStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d of 2 marked", m.Cursor+1, len(m.Modules), len(m.Marked))))

	return b.String()
}

// pickPair runs the picker and returns the chosen pair.
func pickPair(modules []floorplan.Module) (string, string, error) {
	final, err := tea.NewProgram(NewPairPickerModel(modules)).Run()
	if err != nil {
		return "", "", fmt.Errorf("module picker: %w", err)
	}
	a, b, ok := final.(PairPickerModel).Pair()
	if !ok {
		return "", "", fmt.Errorf("no module pair selected")
	}
	return a, b, nil
}
