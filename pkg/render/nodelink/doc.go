// Package nodelink renders design trees as node-link diagrams.
//
// # Overview
//
// Where the preview package draws what the generated terminal UI will look
// like, this package draws the tree itself: layouts become folders, widgets
// become boxes, and every edge is labelled with the constraint the parent
// layout gives that child.
//
// # Usage
//
//	dot := nodelink.ToDOT(tree.Snapshot(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The [ToDOT] output is plain Graphviz source and can also be saved and fed
// to the dot command line tool.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package nodelink
