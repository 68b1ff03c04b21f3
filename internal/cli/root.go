package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging defaults to info level on the CLI's writer; main raises it to
// debug for --verbose. The logger is attached to every command's context
// and is reachable through loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "LocusZoom renders genomic region plots",
		Long: `LocusZoom renders regional association plots: GWAS p-values coloured by LD,
recombination rate, gene tracks and annotation intervals for one region.

Data comes from the sources configured in ~/.config/locuszoom/config.toml
(built-in defaults point at the PortalDev API).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/locuszoom/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.sourcesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
