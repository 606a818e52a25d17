package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/design"
	pio "github.com/matzehuels/panecraft/pkg/io"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for panecraft.

Node arguments complete to the IDs in the design file named by -f, so
"panecraft set <TAB>" lists the panes of design.json with their labels.

Bash:
  $ source <(panecraft completion bash)

Zsh:
  $ panecraft completion zsh > "${fpath[1]}/_panecraft"

Fish:
  $ panecraft completion fish > ~/.config/fish/completions/panecraft.fish

PowerShell:
  PS> panecraft completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// nodeFilter selects which nodes a positional argument completes to.
type nodeFilter int

const (
	anyNode nodeFilter = iota
	layoutNode
)

type completionFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// completeNodes completes the i-th positional argument to node IDs of the
// design file, filtered by positions[i]. Arguments past the end of
// positions get no suggestions.
func completeNodes(positions ...nodeFilter) completionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= len(positions) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return nodeCompletions(cmd, positions[len(args)], toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeLayoutFlag completes a flag value to layout IDs.
func completeLayoutFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return nodeCompletions(cmd, layoutNode, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func nodeCompletions(cmd *cobra.Command, filter nodeFilter, prefix string) []string {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil
	}
	doc, err := pio.ImportJSON(path)
	if err != nil {
		return nil
	}
	tree, err := design.Load(doc.Snapshot)
	if err != nil {
		return nil
	}

	var out []string
	if strings.HasPrefix(rootAlias, prefix) {
		out = append(out, rootAlias+"\troot layout")
	}
	tree.Walk(func(n design.Node, depth int) bool {
		if filter == layoutNode && !n.IsLayout() {
			return true
		}
		if strings.HasPrefix(n.ID, prefix) {
			out = append(out, n.ID+"\t"+n.Label())
		}
		return true
	})
	return out
}
