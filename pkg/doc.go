// Package pkg provides the core libraries for LocusZoom region plots.
//
// # Overview
//
// LocusZoom draws one genomic region as a stack of panels: GWAS p-values
// coloured by linkage disequilibrium with a reference variant, the
// recombination rate, gene models and annotation intervals. Everything about
// a plot is declared in a layout; the libraries turn a layout plus a set of
// data sources into a rendered SVG or a JSON snapshot.
//
// # Architecture
//
// The typical data flow:
//
//	region query ("10:114.7Mb+250kb")
//	         ↓
//	    [region] package (parse and expand to chr:start-end)
//	         ↓
//	    [layout] package (named templates, merge overrides, namespaces)
//	         ↓
//	    [plot] package (instance → panels → data layers)
//	         ↓
//	    [data] package (namespaced sources, chained requests, joins)
//	         ↓
//	    [scene] package (SVG tree)
//
// [pipeline] ties these together for the CLI and the HTTP server and caches
// the rendered artifacts.
//
// # Quick Start
//
//	reg, _ := layout.Default()
//	lay, _ := reg.Get(layout.KindPlot, "standard_association", nil)
//
//	srcs := data.NewSources()
//	_ = srcs.AddKnown("base", data.AssociationName, "https://portaldev.sph.umich.edu/api/v1/statistic/single/")
//	_ = srcs.AddKnown("ld", data.LDName, "https://portaldev.sph.umich.edu/api/v1/pair/LD/")
//
//	inst, _ := plot.FromLayout(lay, data.NewRequester(srcs, nil))
//	_ = inst.MapTo(ctx, "10", 114550452, 115067678)
//	svg := inst.SVG()
//
// # Main Packages
//
// [plot] - Instance, Panel and DataLayer. Panels fetch and render their layers
// concurrently; a panel whose data fails drops a curtain showing the error
// instead of failing the plot.
//
// [data] - Data sources (association, LD, genes, recombination, intervals,
// static JSON), the requester that resolves "namespace:field" references and
// the shared HTTP client with response caching.
//
// [layout] - The layout registry with the built-in plot, panel, data layer
// and dashboard templates, plus YAML/JSON loading.
//
// [scale] - Scale functions (if, numerical_bin, categorical_bin, interpolate,
// expression) used to derive colours, shapes and sizes from data.
//
// [axis] - Linear scales, pretty ticks and megabase formatting.
//
// [scene] - A small SVG scene graph with deterministic output.
//
// [cache] - File, Redis and null caches with a key scheme for responses and
// rendered artifacts.
//
// [observability] - Hooks for fetches, cache events and panel renders, with a
// Prometheus implementation in observability/prom.
//
// [errors] - Structured error codes shared by every package.
//
// [region]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/region
// [layout]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/layout
// [plot]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/plot
// [data]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/data
// [scene]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/scene
// [scale]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/scale
// [axis]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/axis
// [cache]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/locuszoom/pkg/pipeline
package pkg
