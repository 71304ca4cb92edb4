package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/codeatlas/pkg/graph"
	"github.com/matzehuels/codeatlas/pkg/model"
	"github.com/matzehuels/codeatlas/pkg/tree"
)

// browseCommand creates the browse command for interactive tree exploration.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [graph.json]",
		Short: "Explore the containment tree interactively",
		Long: `Explore the containment tree interactively.

The browse command loads a graph.json file (produced by 'analyze') and
opens a terminal browser over the containment hierarchy. Containers
expand and collapse; leaves show their source location.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := graph.ReadDocumentFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			m := newTreeModel(tree.Build(doc.Nodes))
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
}

// Browser styles.
var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	kindStyles = map[model.NodeKind]lipgloss.Style{
		model.KindFile:      lipgloss.NewStyle().Foreground(colorRed),
		model.KindClass:     lipgloss.NewStyle().Foreground(colorGreen),
		model.KindInterface: lipgloss.NewStyle().Foreground(colorGreen),
		model.KindMethod:    lipgloss.NewStyle().Foreground(colorBlue),
		model.KindFunction:  lipgloss.NewStyle().Foreground(colorCyan),
		model.KindImport:    lipgloss.NewStyle().Foreground(colorGray),
	}
)

// treeRow is one visible line of the flattened containment tree.
type treeRow struct {
	id       string
	depth    int
	children bool
	expanded bool
}

// treeModel is the bubbletea model for the containment tree browser.
type treeModel struct {
	forest   *tree.Forest
	expanded map[string]bool
	rows     []treeRow
	cursor   int
	offset   int
	height   int
}

func newTreeModel(f *tree.Forest) treeModel {
	m := treeModel{
		forest:   f,
		expanded: make(map[string]bool),
		height:   20,
	}
	// Roots start expanded so the first screen shows more than file names.
	for _, root := range f.Roots() {
		m.expanded[root] = true
	}
	m.rebuild()
	return m
}

// rebuild flattens the forest into visible rows, honoring expansion state.
func (m *treeModel) rebuild() {
	m.rows = m.rows[:0]
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		children := m.forest.Children(id)
		m.rows = append(m.rows, treeRow{
			id:       id,
			depth:    depth,
			children: len(children) > 0,
			expanded: m.expanded[id],
		})
		if !m.expanded[id] {
			return
		}
		for _, child := range children {
			walk(child, depth+1)
		}
	}
	for _, root := range m.forest.Roots() {
		walk(root, 0)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m treeModel) Init() tea.Cmd {
	return nil
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ", "right", "l":
			row := m.rows[m.cursor]
			if row.children {
				m.expanded[row.id] = !m.expanded[row.id]
				m.rebuild()
			}
		case "left", "h":
			row := m.rows[m.cursor]
			if row.expanded {
				m.expanded[row.id] = false
				m.rebuild()
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m treeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Code Atlas"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))
	return b.String()
}

func (m treeModel) renderRow(i int) string {
	row := m.rows[i]
	n, ok := m.forest.Node(row.id)
	if !ok {
		return ""
	}

	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}

	marker := "  "
	if row.children {
		marker = "▸ "
		if row.expanded {
			marker = "▾ "
		}
	}

	name := model.ShortName(n.Name, 40)
	nameStyle := kindStyle(n.Kind)
	if i == m.cursor {
		nameStyle = browseSelectedStyle
	}

	line := cursor + strings.Repeat("  ", row.depth) + marker +
		nameStyle.Render(name) + " " + browseDimStyle.Render(string(n.Kind))
	if !n.Kind.IsContainer() && n.Line > 0 {
		line += " " + browseDimStyle.Render(fmt.Sprintf("%s:%d", n.File, n.Line))
	}
	return line
}

func kindStyle(kind model.NodeKind) lipgloss.Style {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return StyleValue
}
