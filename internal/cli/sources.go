package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/cache"
)

// sourcesCommand creates the sources command, which lists the configured
// namespaces with their source type and URL.
func (c *CLI) sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if _, err := cfg.newSources(cache.NewNullCache()); err != nil {
				return err
			}
			for _, ns := range cfg.namespaces() {
				s := cfg.Sources[ns]
				printKeyValue(ns, StyleHighlight.Render(s.Type))
				switch {
				case s.URL != "":
					printDetail("%s", s.URL)
				case s.Data != nil:
					printDetail("%d static records", len(s.Data))
				}
				keys := make([]string, 0, len(s.Params))
				for k := range s.Params {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					printDetail("%s = %v", k, s.Params[k])
				}
			}
			if c.configPath != "" {
				printNewline()
				printInfo("Config: %s", c.configPath)
			}
			return nil
		},
	}
}
