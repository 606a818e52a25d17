// Package preview draws a design in the terminal.
//
// [Render] resolves every layout's constraints into cell sizes with [Split]
// and draws widgets as lipgloss boxes using their border style and colors,
// so a design can be checked without compiling the generated Rust program.
// [Outline] prints the tree structure instead.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/panecraft/pkg/codegen"
	"github.com/matzehuels/panecraft/pkg/design"
)

// Default canvas size.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Options control Render.
type Options struct {
	Width  int
	Height int
	// Renderer decides the color profile. Defaults to lipgloss's default
	// renderer (stdout).
	Renderer *lipgloss.Renderer
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Renderer == nil {
		o.Renderer = lipgloss.DefaultRenderer()
	}
}

// Render draws s on a Width x Height canvas. The result has exactly Height
// lines, each Width cells wide.
func Render(s design.Snapshot, opts Options) string {
	opts.setDefaults()
	p := &painter{nodes: s.Nodes, r: opts.Renderer, seen: make(map[string]bool)}
	return p.node(s.RootID, opts.Width, opts.Height)
}

type painter struct {
	nodes map[string]*design.Node
	r     *lipgloss.Renderer
	seen  map[string]bool
}

func (p *painter) node(id string, w, h int) string {
	n, ok := p.nodes[id]
	if !ok || n == nil || p.seen[id] {
		return blank(w, h)
	}
	p.seen[id] = true
	if n.IsLayout() {
		return p.layout(n, w, h)
	}
	return p.widget(n, w, h)
}

func (p *painter) layout(n *design.Node, w, h int) string {
	count := min(len(n.Children), len(n.Constraints))
	if count == 0 {
		return p.placeholder("empty layout", w, h)
	}
	horizontal := n.Direction == design.Horizontal
	total := h
	if horizontal {
		total = w
	}
	sizes := Split(total, n.Constraints[:count])

	var parts []string
	for i, size := range sizes {
		if size <= 0 {
			continue
		}
		if horizontal {
			parts = append(parts, p.node(n.Children[i], size, h))
		} else {
			parts = append(parts, p.node(n.Children[i], w, size))
		}
	}
	if len(parts) == 0 {
		return blank(w, h)
	}
	if horizontal {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}
	return strings.Join(parts, "\n")
}

func (p *painter) widget(n *design.Node, w, h int) string {
	c := describe(n.Data)
	st := n.Data.Styling()

	box := p.r.NewStyle()
	innerW, innerH := w, h
	if c.bordered && w >= 3 && h >= 3 {
		box = box.Border(border(st.BorderStyle))
		if col, ok := color(st.BorderColor); ok {
			box = box.BorderForeground(col)
		}
		innerW, innerH = w-2, h-2
	}
	if col, ok := color(st.TextColor); ok {
		box = box.Foreground(col)
	} else if c.faint {
		box = box.Faint(true)
	}
	if col, ok := color(st.BackgroundColor); ok {
		box = box.Background(col)
	}

	lines := c.lines
	if c.title != "" {
		lines = append([]string{c.title}, lines...)
	}
	lines = fit(lines, innerW, innerH)
	if c.title != "" && len(lines) > 0 {
		lines[0] = p.r.NewStyle().Bold(true).Render(lines[0])
	}
	return box.Width(innerW).Height(innerH).MaxWidth(w).MaxHeight(h).Render(strings.Join(lines, "\n"))
}

func (p *painter) placeholder(text string, w, h int) string {
	lines := fit([]string{text}, w, h)
	return p.r.NewStyle().Faint(true).Width(w).Height(h).MaxWidth(w).MaxHeight(h).Render(strings.Join(lines, "\n"))
}

// content is what a widget shows, with the same defaults the code generator
// uses.
type content struct {
	title    string
	lines    []string
	bordered bool
	faint    bool
}

func describe(d design.WidgetData) content {
	st := d.Styling()
	switch d := d.(type) {
	case design.ParagraphData:
		return content{
			title:    d.Title,
			lines:    strings.Split(or(d.Content, "Paragraph content"), "\n"),
			bordered: d.Title != "" || st.BorderStyle.Bordered(),
		}
	case design.ListData:
		items := d.Items
		if len(items) == 0 {
			items = []string{"Item 1", "Item 2", "Item 3"}
		}
		lines := make([]string, len(items))
		for i, it := range items {
			lines[i] = "• " + it
		}
		return content{title: d.Title, lines: lines, bordered: d.Title != "" || st.BorderStyle.Bordered()}
	case design.TableData:
		headers := d.Headers
		if len(headers) == 0 {
			headers = []string{"Column 1", "Column 2", "Column 3"}
		}
		rows := d.Rows
		if len(rows) == 0 {
			rows = [][]string{{"A", "B", "C"}}
		}
		lines := []string{row(headers)}
		for _, r := range rows {
			lines = append(lines, row(r))
		}
		return content{title: d.Title, lines: lines, bordered: d.Title != "" || st.BorderStyle.Bordered()}
	case design.BlockData:
		return content{title: or(d.Title, "Block"), bordered: true}
	case design.InputData:
		return content{title: d.Label, lines: []string{or(d.Placeholder, "Enter text...")}, bordered: true, faint: true}
	}
	return content{}
}

func row(cells []string) string {
	return strings.Join(cells, " │ ")
}

func border(b design.BorderStyle) lipgloss.Border {
	switch b {
	case design.BorderRounded:
		return lipgloss.RoundedBorder()
	case design.BorderDouble:
		return lipgloss.DoubleBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// color converts a hex color, reporting false for empty or malformed input.
func color(hex string) (lipgloss.Color, bool) {
	if hex == "" {
		return "", false
	}
	r, g, b, err := codegen.ParseHexColor(hex)
	if err != nil {
		return "", false
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b)), true
}

// fit truncates lines to w cells and keeps at most h of them.
func fit(lines []string, w, h int) []string {
	if len(lines) > h {
		lines = lines[:h]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = truncate(strings.ReplaceAll(l, "\t", "    "), w)
	}
	return out
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	rs := []rune(s)
	for len(rs) > 0 && lipgloss.Width(string(rs)) > w {
		rs = rs[:len(rs)-1]
	}
	return string(rs)
}

func blank(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	line := strings.Repeat(" ", w)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
