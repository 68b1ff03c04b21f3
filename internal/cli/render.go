package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/pipeline"
	"github.com/matzehuels/locuszoom/pkg/region"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path, or base path for multiple formats
	layout   string   // plot layout name
	region   string   // region query
	formats  []string // output formats: "svg", "json"
	width    int      // plot width in pixels
	flank    int64    // flank around a single-position query
	ldRefVar string   // LD reference variant
	noCache  bool     // skip the cache for data and artifacts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		layout: pipeline.DefaultLayout,
		width:  pipeline.DefaultWidth,
		flank:  region.DefaultFlank,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a region plot to SVG or JSON",
		Long: `Render a plot layout for one genomic region.

The region is chr:start-end, chr:center+offset or a single chr:position,
which is widened by --flank on both sides. Positions accept K/M/G suffixes.`,
		Example: `  locuszoom render --region 10:114550452-115067678 -o tcf7l2.svg
  locuszoom render -r 10:114.7Mb+250kb -f svg,json
  locuszoom render -l interval_association -r 10:114758349 --flank 100kb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if flank := cmd.Flags().Lookup("flank"); flank.Changed {
				n, err := region.ParsePosition(flank.Value.String())
				if err != nil {
					return err
				}
				opts.flank = n
			}
			return c.runRender(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", opts.layout, "plot layout name")
	cmd.Flags().StringVarP(&opts.region, "region", "r", "", "region query, e.g. 10:114550452-115067678")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "plot width in pixels")
	cmd.Flags().String("flank", "250kb", "flank added around a single position")
	cmd.Flags().StringVar(&opts.ldRefVar, "ldrefvar", "", "LD reference variant (default: best p-value)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	c.registerRenderCompletions(cmd)
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st := newStatus(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", opts.region))
	st.start()
	sw := startStopwatch(logger)

	result, err := runner.Execute(ctx, pipeline.Options{
		Layout:   opts.layout,
		Region:   opts.region,
		Flank:    opts.flank,
		LDRefVar: opts.ldRefVar,
		Width:    opts.width,
		Formats:  opts.formats,
		Logger:   logger,
	})
	if err != nil {
		st.fail("Render failed")
		return err
	}
	st.finish()
	sw.done("rendered", "region", result.Region.String(), "cached", result.CacheInfo.RenderHit)

	base := basePath(opts.output, defaultOutputName(opts.layout, result.Region))
	var written []string
	for _, format := range opts.formats {
		path := base + "." + format
		if opts.output != "" && len(opts.formats) == 1 {
			path = opts.output
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s %s", StyleHighlight.Render(opts.layout), result.Region)
	for _, path := range written {
		printFile(path)
	}
	printStats(result)
	printFaults(result.Faults)
	return nil
}

// printFaults warns about every panel whose curtain is down.
func printFaults(faults map[string]error) {
	if len(faults) == 0 {
		return
	}
	ids := make([]string, 0, len(faults))
	for id := range faults {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		printWarning("panel %s: %v", id, faults[id])
	}
	printDetail("Plots with failed panels are not cached")
}

// defaultOutputName derives an output name from the layout and region,
// e.g. "standard_association_10_114550452-115067678".
func defaultOutputName(layout string, r region.Region) string {
	return fmt.Sprintf("%s_%s_%d-%d", layout, r.Chr, r.Start, r.End)
}

// basePath returns the output path without a known format extension.
// An empty output falls back to fallback.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
