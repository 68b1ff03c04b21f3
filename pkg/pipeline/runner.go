package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/locuszoom/pkg/cache"
	"github.com/matzehuels/locuszoom/pkg/data"
	"github.com/matzehuels/locuszoom/pkg/layout"
	"github.com/matzehuels/locuszoom/pkg/observability"
	"github.com/matzehuels/locuszoom/pkg/region"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner keeps no per-run state, so multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Layouts *layout.Registry
	Sources *data.Sources
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the default key scheme, a nil
// cache disables artifact caching, and a nil logger is replaced by
// [log.Default].
func NewRunner(reg *layout.Registry, srcs *data.Sources, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Layouts: reg,
		Sources: srcs,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Execute runs the region → build → render pipeline with caching.
//
// Panel failures do not fail the run: the affected panels render their
// curtain, Result.Faults holds their errors and the artifacts are not
// cached. Errors are returned for invalid options, unknown layouts and
// layout configuration faults.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	reg, err := ParseRegion(opts.Region, opts.Flank)
	if err != nil {
		return nil, err
	}
	lay, err := ResolveLayout(r.Layouts, opts)
	if err != nil {
		return nil, err
	}
	hash := LayoutHash(lay)
	result := &Result{Region: reg, Faults: map[string]error{}}

	if !opts.Refresh {
		if artifacts, ok := r.cached(ctx, opts, reg, hash); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			r.Logger.Debug("artifacts from cache", "layout", opts.Layout, "region", reg)
			return result, nil
		}
	}

	inst, err := Build(lay, data.NewRequester(r.Sources, opts.Logger), opts)
	if err != nil {
		return nil, err
	}
	result.Plot = inst

	mapStart := time.Now()
	if err := inst.MapTo(ctx, reg.Chr, reg.Start, reg.End); err != nil {
		return nil, err
	}
	result.Stats.MapTime = time.Since(mapStart)
	result.Faults = inst.Faults()

	opts.Logger.Info("mapped plot",
		"layout", opts.Layout,
		"region", reg,
		"panels", len(inst.Panels()),
		"faults", len(result.Faults),
		"duration", result.Stats.MapTime)

	renderStart := time.Now()
	artifacts, err := Render(inst, opts.Formats)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	if len(result.Faults) == 0 {
		r.store(ctx, opts, reg, hash, artifacts)
	}
	return result, nil
}

// cached returns every requested format from the cache, or false if any
// one is missing.
func (r *Runner) cached(ctx context.Context, opts Options, reg region.Region, hash string) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(opts.ArtifactKeyOpts(reg, hash, format))
		raw, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = raw
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, opts Options, reg region.Region, hash string, artifacts map[string][]byte) {
	for format, raw := range artifacts {
		key := r.Keyer.ArtifactKey(opts.ArtifactKeyOpts(reg, hash, format))
		if err := r.Cache.Set(ctx, key, raw, TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(raw))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
