package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response and artifact cache",
		Long: `Manage the local file cache of data-source responses and rendered plots.

The Redis backend is shared between servers; its entries expire with the
configured ttl and are not managed here.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCache opens the configured file cache. ok is false for the redis and
// none backends, after printing why.
func (c *CLI) fileCache() (fc *cache.FileCache, ok bool, err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, false, err
	}
	switch cfg.Cache.Backend {
	case backendRedis:
		printWarning("Redis cache entries expire with their TTL and are not managed here")
		printDetail("Address: %s", cfg.Cache.RedisAddr)
		return nil, false, nil
	case backendNone:
		printInfo("Cache is disabled")
		return nil, false, nil
	}
	dir, err := cfg.cacheDir()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeConfig, err, "get cache dir")
	}
	fc, err = cache.NewFileCache(dir)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeConfig, err, "open cache %s", dir)
	}
	return fc, true, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached responses and plots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.fileCache()
			if err != nil || !ok {
				return err
			}
			remove, what := fc.Clear, "cached entries"
			if expired {
				remove, what = fc.Prune, "expired entries"
			}
			n, err := remove()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "clear %s", fc.Dir())
			}
			if n == 0 {
				printInfo("Nothing to clear")
				return nil
			}
			printSuccess("Cleared %d %s", n, what)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove entries past their ttl")
	return cmd
}

// cacheStatsCommand creates the "cache stats" subcommand.
func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count cached responses and plots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, ok, err := c.fileCache()
			if err != nil || !ok {
				return err
			}
			st, err := fc.Stats()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "read %s", fc.Dir())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "responses  %d\n", st.Responses)
			fmt.Fprintf(out, "plots      %d\n", st.Artifacts)
			fmt.Fprintf(out, "expired    %d\n", st.Expired)
			fmt.Fprintf(out, "size       %s\n", formatBytes(st.Bytes))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cfg.cacheDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeConfig, err, "get cache dir")
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// formatBytes renders n with a binary unit, e.g. "1.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
