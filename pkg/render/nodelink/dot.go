package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/panecraft/pkg/design"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds widget styling (border style and colors) to node labels.
	// When false, only the node label and ID are shown.
	Detailed bool

	// LeftToRight lays the tree out horizontally (rankdir=LR).
	LeftToRight bool
}

// ToDOT converts a design tree to Graphviz DOT format. Layouts are drawn as
// folders, widgets as rounded boxes, and each edge carries the constraint the
// parent assigns to the child. Nodes are emitted in depth-first order so the
// output is stable for a given snapshot.
func ToDOT(s design.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11, fontcolor=\"#555555\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	seen := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		n, ok := s.Nodes[id]
		if !ok || n == nil || seen[id] {
			return
		}
		seen[id] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(id, n, opts.Detailed), ", "))
		for i, child := range n.Children {
			label := ""
			if i < len(n.Constraints) {
				label = n.Constraints[i].String()
			}
			edges = append(edges, fmt.Sprintf("  %q -> %q [label=%q];\n", id, child, label))
			walk(child)
		}
	}
	walk(s.RootID)

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id string, n *design.Node, detailed bool) string {
	label := n.Label() + "\n" + id
	if !detailed || !n.IsWidget() || n.Data == nil {
		return label
	}
	st := n.Data.Styling()
	var parts []string
	if st.BorderStyle != "" {
		parts = append(parts, "border: "+string(st.BorderStyle))
	}
	for _, c := range []struct{ name, v string }{
		{"border color", st.BorderColor},
		{"text", st.TextColor},
		{"background", st.BackgroundColor},
	} {
		if c.v != "" {
			parts = append(parts, c.name+": "+c.v)
		}
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(id string, n *design.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(id, n, detailed))}
	if n.IsLayout() {
		return append(attrs, "shape=folder", "style=filled", "fillcolor=\"#eef3fb\"")
	}
	if n.Data == nil {
		return attrs
	}
	st := n.Data.Styling()
	if !st.BorderStyle.Bordered() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if isHex(st.BackgroundColor) {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", expandHex(st.BackgroundColor)))
	}
	if isHex(st.BorderColor) {
		attrs = append(attrs, fmt.Sprintf("color=%q", expandHex(st.BorderColor)))
	}
	if isHex(st.TextColor) {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", expandHex(st.TextColor)))
	}
	return attrs
}

var hexRe = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

func isHex(c string) bool { return hexRe.MatchString(c) }

// expandHex turns "#abc" into "#aabbcc"; Graphviz only reads the long form.
func expandHex(c string) string {
	if len(c) != 4 {
		return c
	}
	return string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]})
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
