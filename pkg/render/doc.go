// Package render groups the diagram renderers for designs.
//
// The [nodelink] subpackage draws the design tree as a Graphviz node-link
// diagram, emitting DOT source or rendering it to SVG in-process:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The terminal preview of a design lives in package preview instead, since
// it draws the panes themselves rather than the tree.
//
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/panecraft/pkg/render/nodelink
package render
