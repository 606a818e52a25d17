package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panecraft/pkg/design"
)

// OutlineStyles colors the parts of an outline line.
type OutlineStyles struct {
	ID         lipgloss.Style
	Constraint lipgloss.Style
	Label      lipgloss.Style
	Branch     lipgloss.Style
}

// PlainOutlineStyles prints an outline without decoration.
func PlainOutlineStyles() OutlineStyles {
	plain := lipgloss.NewStyle()
	return OutlineStyles{ID: plain, Constraint: plain, Label: plain, Branch: plain}
}

// DefaultOutlineStyles matches the CLI palette.
func DefaultOutlineStyles() OutlineStyles {
	return OutlineStyles{
		ID:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Constraint: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Label:      lipgloss.NewStyle().Bold(true),
		Branch:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Outline prints the tree one node per line:
//
//	Layout(Vertical)  root-id
//	├── Percentage(80)  Paragraph "Hello"  p1
//	└── Percentage(20)  Layout(Horizontal)  l2
//	    └── Length(3)  Block  b3
func Outline(s design.Snapshot, st OutlineStyles) string {
	var b strings.Builder
	root, ok := s.Nodes[s.RootID]
	if !ok || root == nil {
		return ""
	}
	b.WriteString(st.Label.Render(root.Label()) + "  " + st.ID.Render(s.RootID) + "\n")
	outline(&b, s, root, "", st, map[string]bool{s.RootID: true})
	return b.String()
}

func outline(b *strings.Builder, s design.Snapshot, n *design.Node, prefix string, st OutlineStyles, seen map[string]bool) {
	for i, id := range n.Children {
		last := i == len(n.Children)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		var c string
		if i < len(n.Constraints) {
			c = n.Constraints[i].String()
		}
		child, ok := s.Nodes[id]
		label := "<missing>"
		if ok && child != nil {
			label = child.Label()
		}
		b.WriteString(st.Branch.Render(prefix+branch) + st.Constraint.Render(c) + "  " +
			st.Label.Render(label) + "  " + st.ID.Render(id) + "\n")
		if ok && child != nil && child.IsLayout() && !seen[id] {
			seen[id] = true
			outline(b, s, child, prefix+indent, st, seen)
		}
	}
}
