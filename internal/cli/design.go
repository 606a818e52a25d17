package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/design"
	pio "github.com/matzehuels/panecraft/pkg/io"
	"github.com/matzehuels/panecraft/pkg/preview"
	"github.com/matzehuels/panecraft/pkg/project"
)

// =============================================================================
// new
// =============================================================================

func (c *CLI) newCommand() *cobra.Command {
	var (
		path      string
		name      string
		direction string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty design file",
		Long: `Create a design file holding a single empty root layout.

The name is used for the generated Cargo package; it defaults to the file
name.`,
		Example: `  panecraft new
  panecraft new -f dashboard.json --name "Dashboard" --direction horizontal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			t := design.New(design.WithPolicy(cfg.Policy))
			if err := t.UpdateNodeProps(t.RootID(), design.Props{Direction: &dir}); err != nil {
				return err
			}
			if err := pio.ExportJSON(&pio.Document{Name: name, Snapshot: t.Snapshot()}, path); err != nil {
				return err
			}

			printSuccess("Created %s", path)
			printNextStep("Add a pane", fmt.Sprintf("%s add paragraph --title Hello -f %s", appName, path))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().StringVar(&name, "name", "", "project name (default: file name)")
	cmd.Flags().StringVar(&direction, "direction", string(design.Vertical), "root layout direction: vertical, horizontal")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// =============================================================================
// add
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		path   string
		parent string
		props  propsFlags
	)

	cmd := &cobra.Command{
		Use:   "add <layout|paragraph|list|table|block|input>",
		Short: "Add a pane to a layout",
		Long: `Add a layout or widget as the last child of a layout.

Existing percentage panes shrink to make room for the new one. The new node
ID is printed on stdout.`,
		Example: `  panecraft add paragraph --title Logs
  panecraft add layout --direction horizontal
  panecraft add list --parent 1f0c... --item one --item two`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: nodeKinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := nodeTemplate(args[0])
			if err != nil {
				return err
			}
			p, err := props.props(cmd)
			if err != nil {
				return err
			}

			var id string
			err = c.editDesign(path, func(f *designFile) error {
				parentID := f.tree.RootID()
				if parent != "" {
					parentID = f.resolve(parent)
				}
				newID, err := f.tree.Add(parentID, tmpl)
				if err != nil {
					return err
				}
				id = newID
				if p.Empty() {
					return nil
				}
				return f.tree.UpdateNodeProps(id, p)
			})
			if err != nil {
				return err
			}

			c.Logger.Debug("node added", "id", id, "type", args[0])
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().StringVar(&parent, "parent", "", "parent layout ID (default: root)")
	_ = cmd.RegisterFlagCompletionFunc("parent", completeLayoutFlag)
	props.register(cmd)
	return cmd
}

// nodeKinds lists the kind arguments of add.
func nodeKinds() []string {
	kinds := []string{"layout"}
	for _, wt := range design.WidgetTypes {
		kinds = append(kinds, strings.ToLower(string(wt)))
	}
	return kinds
}

// nodeTemplate returns an empty node for a kind argument of add.
func nodeTemplate(kind string) (design.Node, error) {
	if strings.EqualFold(kind, "layout") {
		return design.NewLayout(design.Vertical), nil
	}
	wt, err := parseWidgetType(kind)
	if err != nil {
		return design.Node{}, fmt.Errorf("%w (or layout)", err)
	}
	return design.NewWidgetOfType(wt)
}

// =============================================================================
// delete
// =============================================================================

func (c *CLI) deleteCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:               "delete <id>",
		Aliases:           []string{"rm"},
		Short:             "Delete a pane and everything below it",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNodes(anyNode),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed int
			err := c.editDesign(path, func(f *designFile) error {
				before := f.tree.Len()
				if err := f.tree.Delete(f.resolve(args[0])); err != nil {
					return err
				}
				removed = before - f.tree.Len()
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Deleted %s (%d nodes)", args[0], removed)
			return nil
		},
	}

	addFileFlag(cmd, &path)
	return cmd
}

// =============================================================================
// move
// =============================================================================

func (c *CLI) moveCommand() *cobra.Command {
	var (
		path  string
		index int
	)

	cmd := &cobra.Command{
		Use:   "move <id> <parent>",
		Short: "Move a pane to another layout or position",
		Long: `Move a node and its subtree to position --index among the children of
parent. Without --index the node becomes the last child.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeNodes(anyNode, layoutNode),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.editDesign(path, func(f *designFile) error {
				id, parentID := f.resolve(args[0]), f.resolve(args[1])
				at := index
				if at < 0 {
					at = appendIndex(f.tree, id, parentID)
				}
				return f.tree.Move(id, parentID, at)
			})
			if err != nil {
				return err
			}
			printSuccess("Moved %s into %s", args[0], args[1])
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().IntVar(&index, "index", -1, "position among the new parent's children (default: last)")
	return cmd
}

// appendIndex is the Move index that puts id last in parentID.
func appendIndex(t *design.Tree, id, parentID string) int {
	n, ok := t.Node(parentID)
	if !ok {
		return 0
	}
	if p, _, ok := t.Parent(id); ok && p == parentID {
		return len(n.Children) - 1
	}
	return len(n.Children)
}

// =============================================================================
// set
// =============================================================================

func (c *CLI) setCommand() *cobra.Command {
	var (
		path  string
		props propsFlags
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change a pane's properties",
		Long: `Change the direction of a layout or the content and style of a widget.

Only the given flags are changed. Flags that do not apply to the node are
ignored.`,
		Example: `  panecraft set root --direction horizontal
  panecraft set 1f0c... --title Status --border rounded --border-color "#1e90ff"
  panecraft set 2a9d... --headers Name,Size --row a,1 --row b,2`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNodes(anyNode),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := props.props(cmd)
			if err != nil {
				return err
			}
			if p.Empty() {
				return fmt.Errorf("nothing to set (see %s set --help)", appName)
			}
			err = c.editDesign(path, func(f *designFile) error {
				return f.tree.UpdateNodeProps(f.resolve(args[0]), p)
			})
			if err != nil {
				return err
			}
			printSuccess("Updated %s", args[0])
			return nil
		},
	}

	addFileFlag(cmd, &path)
	props.register(cmd)
	return cmd
}

// propsFlags holds the flags shared by add and set.
type propsFlags struct {
	direction   string
	title       string
	content     string
	label       string
	placeholder string
	items       []string
	headers     []string
	rows        []string
	border      string
	borderColor string
	textColor   string
	bgColor     string
}

func (p *propsFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.direction, "direction", "", "layout direction: vertical, horizontal")
	f.StringVar(&p.title, "title", "", "widget title")
	f.StringVar(&p.content, "content", "", "paragraph text")
	f.StringVar(&p.label, "label", "", "input label")
	f.StringVar(&p.placeholder, "placeholder", "", "input placeholder")
	f.StringArrayVar(&p.items, "item", nil, "list item (repeatable)")
	f.StringSliceVar(&p.headers, "headers", nil, "table headers (comma-separated)")
	f.StringArrayVar(&p.rows, "row", nil, "table row, cells comma-separated (repeatable)")
	f.StringVar(&p.border, "border", "", "border style: none, plain, rounded, double")
	f.StringVar(&p.borderColor, "border-color", "", "border color (#RGB or #RRGGBB, empty for default)")
	f.StringVar(&p.textColor, "text-color", "", "text color (#RGB or #RRGGBB, empty for default)")
	f.StringVar(&p.bgColor, "bg-color", "", "background color (#RGB or #RRGGBB, empty for default)")
}

// props converts the flags that were set into a validated update.
func (p *propsFlags) props(cmd *cobra.Command) (design.Props, error) {
	var out design.Props
	f := cmd.Flags()

	if f.Changed("direction") {
		d, err := parseDirection(p.direction)
		if err != nil {
			return out, err
		}
		out.Direction = &d
	}
	if f.Changed("border") {
		b, err := parseBorderStyle(p.border)
		if err != nil {
			return out, err
		}
		out.BorderStyle = &b
	}

	strs := []struct {
		flag string
		val  *string
		dst  **string
	}{
		{"title", &p.title, &out.Title},
		{"content", &p.content, &out.Content},
		{"label", &p.label, &out.Label},
		{"placeholder", &p.placeholder, &out.Placeholder},
		{"border-color", &p.borderColor, &out.BorderColor},
		{"text-color", &p.textColor, &out.TextColor},
		{"bg-color", &p.bgColor, &out.BackgroundColor},
	}
	for _, s := range strs {
		if f.Changed(s.flag) {
			v := *s.val
			*s.dst = &v
		}
	}

	if f.Changed("item") {
		items := append([]string{}, p.items...)
		out.Items = &items
	}
	if f.Changed("headers") {
		headers := append([]string{}, p.headers...)
		out.Headers = &headers
	}
	if f.Changed("row") {
		rows := make([][]string, len(p.rows))
		for i, r := range p.rows {
			rows[i] = strings.Split(r, ",")
		}
		out.Rows = &rows
	}

	return out, project.ValidateProps(out)
}

// =============================================================================
// constraint / resize
// =============================================================================

func (c *CLI) constraintCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "constraint <parent> <index> <percentage|length|min|max> <value>",
		Short: "Set the size constraint of a layout slot",
		Long: `Replace the constraint of the slot at index in a layout.

When every slot of the layout is then a percentage, the neighbouring slot
absorbs the difference so the shares still add up to 100.`,
		Example: `  panecraft constraint root 0 length 3
  panecraft constraint root 1 percentage 70`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeNodes(layoutNode),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index: %q", args[1])
			}
			kind, err := parseConstraintKind(args[2])
			if err != nil {
				return err
			}
			value, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid value: %q", args[3])
			}
			var cs []design.Constraint
			err = c.editDesign(path, func(f *designFile) error {
				parentID := f.resolve(args[0])
				if err := f.tree.UpdateConstraint(parentID, index, kind, value); err != nil {
					return err
				}
				n, _ := f.tree.Node(parentID)
				cs = n.Constraints
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Updated %s: %s", args[0], formatConstraints(cs))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	return cmd
}

func (c *CLI) resizeCommand() *cobra.Command {
	var (
		path  string
		delta float64
	)

	cmd := &cobra.Command{
		Use:   "resize <parent> <index> --by <delta>",
		Short: "Grow a slot at the expense of the next one",
		Long: `Move --by percentage points from slot index+1 to slot index of a layout.
A negative delta shrinks the slot instead. Neither slot shrinks below the
minimum share.`,
		Example: `  panecraft resize root 0 --by 10
  panecraft resize root 0 --by -5`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeNodes(layoutNode),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index: %q", args[1])
			}
			var cs []design.Constraint
			err = c.editDesign(path, func(f *designFile) error {
				parentID := f.resolve(args[0])
				if err := f.tree.ResizeConstraint(parentID, index, delta); err != nil {
					return err
				}
				n, _ := f.tree.Node(parentID)
				cs = n.Constraints
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess("Resized %s: %s", args[0], formatConstraints(cs))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().Float64Var(&delta, "by", 0, "percentage points to move into the slot")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func formatConstraints(cs []design.Constraint) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// =============================================================================
// show
// =============================================================================

func (c *CLI) showCommand() *cobra.Command {
	var (
		path  string
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the design tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.openDesign(path)
			if err != nil {
				return err
			}
			styles := preview.DefaultOutlineStyles()
			if plain {
				styles = preview.PlainOutlineStyles()
			}
			fmt.Fprint(cmd.OutOrStdout(), preview.Outline(f.tree.Snapshot(), styles))
			return nil
		},
	}

	addFileFlag(cmd, &path)
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}
