package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/scene"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	treeHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ElementTreeModel - Interactive hierarchy browser
// =============================================================================

// treeRow is one visible line of the tree.
type treeRow struct {
	id    string
	level int
}

// ElementTreeModel is the bubbletea model for browsing a resolved scene as
// a collapsible containment tree with a details pane.
type ElementTreeModel struct {
	Title     string
	Items     map[string]scene.Item
	Roots     []string
	Collapsed map[string]bool
	Cursor    int
	Offset    int
	Height    int

	rows []treeRow
}

// NewElementTreeModel creates a tree model over the scene's items, fully
// expanded.
func NewElementTreeModel(title string, sc *scene.Scene) ElementTreeModel {
	m := ElementTreeModel{
		Title:     title,
		Items:     make(map[string]scene.Item, len(sc.Items)),
		Collapsed: make(map[string]bool),
		Height:    15,
	}
	for _, it := range sc.Items {
		m.Items[it.ID] = it
	}
	for _, it := range sc.Items {
		if _, ok := m.Items[it.Parent]; !ok {
			m.Roots = append(m.Roots, it.ID)
		}
	}
	m.rows = m.visible()
	return m
}

// visible flattens the tree, skipping descendants of collapsed items.
func (m ElementTreeModel) visible() []treeRow {
	var rows []treeRow
	seen := make(map[string]bool, len(m.Items))
	var walk func(id string, level int)
	walk = func(id string, level int) {
		it, ok := m.Items[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		rows = append(rows, treeRow{id: id, level: level})
		if m.Collapsed[id] {
			return
		}
		for _, c := range it.Children {
			walk(c, level+1)
		}
	}
	for _, r := range m.Roots {
		walk(r, 0)
	}
	return rows
}

// Selected returns the item under the cursor.
func (m ElementTreeModel) Selected() (scene.Item, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return scene.Item{}, false
	}
	it, ok := m.Items[m.rows[m.Cursor].id]
	return it, ok
}

func (m ElementTreeModel) Init() tea.Cmd {
	return nil
}

func (m ElementTreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "enter", " ":
			if it, ok := m.Selected(); ok && len(it.Children) > 0 {
				m.setCollapsed(it.ID, !m.Collapsed[it.ID])
			}
		case "right", "l":
			if it, ok := m.Selected(); ok {
				m.setCollapsed(it.ID, false)
			}
		case "left", "h":
			it, ok := m.Selected()
			if !ok {
				break
			}
			if len(it.Children) > 0 && !m.Collapsed[it.ID] {
				m.setCollapsed(it.ID, true)
				break
			}
			for i, r := range m.rows {
				if r.id == it.Parent {
					m.Cursor = i
					break
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	m.scroll()
	return m, nil
}

// setCollapsed copies the map so earlier model values stay unchanged.
func (m *ElementTreeModel) setCollapsed(id string, collapsed bool) {
	next := make(map[string]bool, len(m.Collapsed)+1)
	maps.Copy(next, m.Collapsed)
	if collapsed {
		next[id] = true
	} else {
		delete(next, id)
	}
	m.Collapsed = next
	m.rows = m.visible()
	m.Cursor = min(m.Cursor, len(m.rows)-1)
}

func (m *ElementTreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ElementTreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ⏎ toggle  ←/→ collapse/expand  q quit"))
	b.WriteString("\n\n")

	var tree strings.Builder
	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		it := m.Items[r.id]

		marker := "  "
		if len(it.Children) > 0 {
			marker = "▾ "
			if m.Collapsed[it.ID] {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", r.level) + marker + it.ID + " " + treeDimStyle.Render(it.Type)
		if i == m.Cursor {
			line = treeSelectedStyle.Render(strings.Repeat("  ", r.level)+marker+it.ID) + " " + treeDimStyle.Render(it.Type)
		} else {
			line = treeNormalStyle.Render(line)
		}
		tree.WriteString(line)
		tree.WriteString("\n")
	}

	details := ""
	if it, ok := m.Selected(); ok {
		details = detailsTable(it).Render()
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(40).Render(tree.String()),
		details,
	))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

// detailsTable lists the resolved attributes of one item.
func detailsTable(it scene.Item) *table.Table {
	rows := [][]string{
		{"id", it.ID},
		{"type", it.Type},
		{"kind", it.Kind.String()},
	}
	if it.Name != "" {
		rows = append(rows, []string{"name", it.Name})
	}
	rows = append(rows,
		[]string{"parent", it.Parent},
		[]string{"depth", strconv.Itoa(it.Depth)},
		[]string{"local", fmtVec(it.Local)},
		[]string{"absolute", fmtVec(it.Absolute)},
		[]string{"shape", string(it.Primitive.Shape)},
		[]string{"size", fmtVec(it.Primitive.Size)},
	)
	for _, k := range slices.Sorted(maps.Keys(it.Properties)) {
		rows = append(rows, []string{k, fmt.Sprint(it.Properties[k])})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Field", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return treeHeaderStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
}

func fmtVec(v model.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", num(v.X), num(v.Y), num(v.Z))
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
