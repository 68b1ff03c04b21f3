package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/pipeline"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script. Layout names are completed from
the configured registry, including layouts_dir.

  $ source <(locuszoom completion bash)
  $ locuszoom completion zsh > "${fpath[1]}/_locuszoom"
  $ locuszoom completion fish | source
  PS> locuszoom completion powershell | Out-String | Invoke-Expression`,
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeLayouts completes names of the given kind that start with prefix.
// A broken config yields no suggestions rather than an error.
func (c *CLI) completeLayouts(kind layout.Kind, prefix string) ([]string, cobra.ShellCompDirective) {
	reg, err := c.layouts()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range reg.List(kind) {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeShowArgs completes "layouts show <kind> <name>".
func (c *CLI) completeShowArgs(_ *cobra.Command, args []string, prefix string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return kindNames(), cobra.ShellCompDirectiveNoFileComp
	case 1:
		kind, err := parseKind(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.completeLayouts(kind, prefix)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// registerRenderCompletions wires flag completion for render.
func (c *CLI) registerRenderCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("layout", func(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
		return c.completeLayouts(layout.KindPlot, prefix)
	})
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatSVG + "," + pipeline.FormatJSON},
		cobra.ShellCompDirectiveNoFileComp))
}
