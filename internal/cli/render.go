package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/preview"
	"github.com/matzehuels/panecraft/pkg/render/nodelink"
)

// =============================================================================
// preview
// =============================================================================

func (c *CLI) previewCommand() *cobra.Command {
	var (
		path   string
		width  int
		height int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Draw the design in the terminal",
		Long: `Draw the design on a width x height canvas the way the generated program
lays it out: lengths are fixed, percentages share the space and the last
slot absorbs rounding.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.openDesign(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, preview.Render(f.tree.Snapshot(), preview.Options{
				Width:    width,
				Height:   height,
				Renderer: lipgloss.NewRenderer(out),
			}))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().IntVar(&width, "width", preview.DefaultWidth, "canvas width in cells")
	cmd.Flags().IntVar(&height, "height", preview.DefaultHeight, "canvas height in rows")
	return cmd
}

// =============================================================================
// graph
// =============================================================================

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	path        string // design file
	output      string // output file (default: design name + extension)
	dot         bool   // emit DOT instead of SVG
	detailed    bool   // include widget styling in labels
	leftToRight bool   // rank left to right
	noCache     bool   // bypass the artifact cache
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the design tree as a Graphviz diagram",
		Long: `Render the design tree as a node-link diagram. Layouts are drawn as
folders, widgets as boxes in their colors, and every edge is labelled with
the constraint of its slot.

The SVG is written next to the design file unless -o is given. With --dot
the Graphviz source is written instead (to stdout without -o).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	addFileFlag(cmd, &opts.path)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "write Graphviz DOT instead of SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show border and colors in node labels")
	cmd.Flags().BoolVar(&opts.leftToRight, "lr", false, "lay the tree out left to right")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, stdout io.Writer, opts *graphOpts) error {
	ctx = withLogger(ctx, c.Logger)

	f, err := c.openDesign(opts.path)
	if err != nil {
		return err
	}
	snap := f.tree.Snapshot()
	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.detailed, LeftToRight: opts.leftToRight})

	if opts.dot {
		if opts.output == "" || opts.output == "-" {
			_, err := io.WriteString(stdout, dot)
			return err
		}
		if err := writeFile(opts.output, []byte(dot)); err != nil {
			return err
		}
		printFile(opts.output)
		return nil
	}

	arts, err := c.openArtifacts(ctx, f, opts.noCache)
	if err != nil {
		return err
	}
	defer arts.Close()

	sp := newSpinner(ctx, os.Stderr, "Rendering diagram...")
	sp.Start()
	svg, cached, err := arts.load(ctx, snap, cache.ArtifactKeyOpts{Kind: cache.KindSVG, Name: graphVariant(opts)}, func() ([]byte, error) {
		return nodelink.RenderSVG(ctx, dot)
	})
	elapsed := sp.Stop()
	if sp.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	c.Logger.Debug("diagram rendered", "elapsed", elapsed.Round(time.Millisecond), "cached", cached)

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(opts.path, filepath.Ext(opts.path)) + ".svg"
	}
	if out == "-" {
		_, err := stdout.Write(svg)
		return err
	}
	if err := writeFile(out, svg); err != nil {
		return err
	}
	printFile(out)
	printStats(len(snap.Nodes), len(svg), cached)
	return nil
}

// graphVariant names the rendering options in the cache key.
func graphVariant(opts *graphOpts) string {
	var parts []string
	if opts.detailed {
		parts = append(parts, "detailed")
	}
	if opts.leftToRight {
		parts = append(parts, "lr")
	}
	return strings.Join(parts, "-")
}
